package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/pricetool/priceopt/internal/client/models"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password from the user's
// terminal without echo. A newline is printed after the read to keep the UI
// tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetMultiline prints a prompt to w and reads multiple lines until an empty
// line is entered (i.e., the user presses Enter twice). The trailing newline
// on each line is trimmed and the collected text is joined with '\n'.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// GetConfirm asks a yes/no question. Only "y" and "yes" (any case) confirm;
// anything else, including a read error, declines.
func GetConfirm(reader *bufio.Reader, prompt string, w io.Writer) bool {
	answer, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// formField binds a prompt to a ProductForm field.
type formField struct {
	label     string
	multiline bool
	ptr       func(*models.ProductForm) *string
}

var productFormFields = []formField{
	{label: "Product name", ptr: func(f *models.ProductForm) *string { return &f.Name }},
	{label: "Category", ptr: func(f *models.ProductForm) *string { return &f.Category }},
	{label: "Cost price", ptr: func(f *models.ProductForm) *string { return &f.CostPrice }},
	{label: "Selling price", ptr: func(f *models.ProductForm) *string { return &f.SellingPrice }},
	{label: "Description", multiline: true, ptr: func(f *models.ProductForm) *string { return &f.Description }},
	{label: "Available stock", ptr: func(f *models.ProductForm) *string { return &f.StockAvailable }},
	{label: "Units sold", ptr: func(f *models.ProductForm) *string { return &f.UnitsSold }},
	{label: "Customer rating (1-5, optional)", ptr: func(f *models.ProductForm) *string { return &f.CustomerRating }},
}

// GetProductForm prompts for every product field. The values in current are
// shown in brackets and kept when the answer is empty, which lets the same
// flow serve both add and edit.
func GetProductForm(reader *bufio.Reader, w io.Writer, current models.ProductForm) (models.ProductForm, error) {
	form := current
	for _, f := range productFormFields {
		dst := f.ptr(&form)
		prompt := f.label
		if *dst != "" {
			prompt = fmt.Sprintf("%s [%s]", f.label, strings.ReplaceAll(*dst, "\n", " "))
		}

		var (
			v   string
			err error
		)
		if f.multiline {
			v, err = getMultiline(reader, prompt, w)
		} else {
			v, err = getSimpleText(reader, prompt, w)
		}
		if err != nil {
			return models.ProductForm{}, err
		}
		if v != "" {
			*dst = v
		}
	}
	return form, nil
}
