package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/pricetool/priceopt/internal/logging"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const (
	helpLoggedOut = "Available commands: register, login, verify <token>, help, exit"
	helpLoggedIn  = "Available commands: products, optimization, search <text>, search!, " +
		"category [name], select <id>, selectall, add, edit <id>, delete <id>, forecast, " +
		"demand, refresh, show, whoami, verify <token>, logout, help, exit"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Verify(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Products(ctx context.Context) error
	Optimization(ctx context.Context) error
	Refresh(ctx context.Context) error
	Show(ctx context.Context) error
	Search(ctx context.Context, text string) error
	FlushSearch(ctx context.Context) error
	Category(ctx context.Context, name string) error
	Select(ctx context.Context, id string) error
	SelectAll(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Forecast(ctx context.Context) error
	Demand(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the priceopt CLI.
//
// It reads a line from in, parses the first token as the command and the
// rest of the line as its argument, and dispatches to methods on 'a'. The
// prompts of interactive commands read from the same reader, so piped input
// reaches them in order. The loop exits on EOF or when the user types "exit"
// or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Public:
//	  - register            create an account
//	  - login               authenticate
//	  - verify <token>      confirm an email address
//	  - help                show available commands
//	  - exit | quit         leave the program
//
//	Protected (the session guard runs first and may ask for a login):
//	  - products            open the products page
//	  - optimization        open the pricing optimization page
//	  - search <text>       debounced fuzzy search on the active page
//	  - search!             apply the pending search now
//	  - category [name]     filter by category; no name clears the filter
//	  - select <id>         toggle a row's selection
//	  - selectall           select all visible rows, or clear them
//	  - add | edit <id>     create or update a product
//	  - delete <id>         delete a product after confirmation
//	  - forecast            demand forecast for the selection
//	  - demand              toggle the demand forecast column
//	  - refresh | show      re-fetch or re-print the active page
//	  - whoami | logout
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("priceopt %s> ", statusFn()))
		line, ok := readLine(in)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.Join(parts[1:], " ")
		ctx := logging.ContextWith(ctx, "command", cmd)

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "verify":
			if arg == "" {
				printlnFn("Usage: verify <token>")
				continue
			}
			err = a.Verify(ctx, arg)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "p", "products":
			err = a.Products(ctx)

		case "o", "optimization":
			err = a.Optimization(ctx)

		case "refresh":
			err = a.Refresh(ctx)

		case "l", "show":
			err = a.Show(ctx)

		case "search", "/":
			err = a.Search(ctx, arg)

		case "search!":
			err = a.FlushSearch(ctx)

		case "category":
			err = a.Category(ctx, arg)

		case "select":
			if arg == "" {
				printlnFn("Usage: select <id>")
				continue
			}
			err = a.Select(ctx, arg)

		case "selectall":
			err = a.SelectAll(ctx)

		case "add":
			err = a.Add(ctx)

		case "edit":
			if arg == "" {
				printlnFn("Usage: edit <id>")
				continue
			}
			err = a.Edit(ctx, arg)

		case "delete":
			if arg == "" {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, arg)

		case "forecast":
			err = a.Forecast(ctx)

		case "demand":
			err = a.Demand(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(renderError(err))
		}
	}
}

// readLine returns the next input line without its line ending. A final line
// with no newline is still returned; ok is false only at end of input.
func readLine(in *bufio.Reader) (string, bool) {
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
