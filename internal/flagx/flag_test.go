package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "short flag with separate value",
			args:    []string{"-c", "conf.yaml", "-a", "http://localhost:8000"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "conf.yaml"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "x"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "order preserved",
			args:    []string{"-d", "500", "-a", "http://api", "-x", "1"},
			allowed: []string{"-a", "-d"},
			want:    []string{"-d", "500", "-a", "http://api"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "flag followed by another flag",
			args:    []string{"-c", "-a"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "value with equals sign kept whole",
			args:    []string{"-a=http://host/?q=1"},
			allowed: []string{"-a"},
			want:    []string{"-a=http://host/?q=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFileFlag([]string{"-c", "a.json"}))
	assert.Equal(t, "b.yaml", ConfigFileFlag([]string{"-a", "x", "-config=b.yaml"}))
	assert.Equal(t, "c.yml", ConfigFileFlag([]string{"--config", "c.yml"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", "x"}))
	assert.Equal(t, "", ConfigFileFlag(nil))
}

func TestEnvFileFlag(t *testing.T) {
	assert.Equal(t, "dev.env", EnvFileFlag([]string{"-env", "dev.env", "-c", "x.json"}))
	assert.Equal(t, "", EnvFileFlag([]string{"-c", "x.json"}))
}
