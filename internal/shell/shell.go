// Package shell is the interactive menu front end of the ledger. It reads
// operator input line by line and renders results as plain text.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bookstore/ledger/internal/app"
	"github.com/bookstore/ledger/internal/validate"
	"go.uber.org/zap"
)

// errQuit is returned by the input helpers once input is closed or the
// session context is canceled.
var errQuit = errors.New("input closed")

// Shell drives one interactive session
type Shell struct {
	app   *app.Application
	in    io.Reader
	out   io.Writer
	log   *zap.Logger
	lines chan string
}

// New creates a shell reading from in and writing to out
func New(application *app.Application, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	return &Shell{
		app: application,
		in:  in,
		out: out,
		log: log,
	}
}

// Run loads the data files, serves the main menu and saves both files on
// exit. End of input and cancellation of ctx are handled like choosing
// "Exit & Save".
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	s.lines = make(chan string)
	go s.readLines(done)

	s.println("INVENTORY & SALES MANAGEMENT SYSTEM")
	s.load()

	err := s.mainMenu(ctx)
	if errors.Is(err, errQuit) {
		s.log.Info("Input closed, exiting", zap.NamedError("cause", context.Cause(ctx)))
		s.println()
	} else if err != nil {
		return err
	}

	s.exitAndSave()
	return nil
}

func (s *Shell) readLines(done <-chan struct{}) {
	defer close(s.lines)

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		select {
		case s.lines <- strings.TrimRight(scanner.Text(), "\r"):
		case <-done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Error("Failed to read input", zap.Error(err))
	}
}

func (s *Shell) load() {
	report := s.app.Load()

	switch {
	case report.CatalogError != nil:
		s.printf("Error loading inventory: %v\n", report.CatalogError)
	case !report.Catalog.Found:
		s.println("No inventory file found. Starting empty.")
	case report.Catalog.Skipped > 0:
		for _, rejected := range report.Catalog.Rejected {
			s.printf("Skipping invalid row at %v\n", rejected)
		}
		s.printf("Inventory loaded (%d products, %d invalid rows skipped)\n",
			len(report.Catalog.Products), report.Catalog.Skipped)
	default:
		s.printf("Inventory loaded (%d products)\n", len(report.Catalog.Products))
	}

	switch {
	case report.SalesError != nil:
		s.printf("Error loading sales: %v\n", report.SalesError)
	case !report.Sales.Found:
		s.println("No sales file found. Starting empty.")
	default:
		s.printf("Sales loaded (%d records)\n", len(report.Sales.Sales))
	}
}

func (s *Shell) exitAndSave() {
	s.println("\n Saving data before exit...")
	s.saveInventory()
	s.saveSales()
	s.println("Goodbye! See you next time.")
}

// readLine prints prompt and waits for the next input line
func (s *Shell) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	select {
	case <-ctx.Done():
		return "", errQuit
	case line, ok := <-s.lines:
		if !ok {
			return "", errQuit
		}
		return line, nil
	}
}

// readText repeats prompt until a usable text value is entered
func (s *Shell) readText(ctx context.Context, prompt string, allowDigits bool) (string, error) {
	for {
		line, err := s.readLine(ctx, prompt)
		if err != nil {
			return "", err
		}
		value, err := validate.Text(line, allowDigits)
		if err != nil {
			s.println(sentence(err))
			continue
		}
		return value, nil
	}
}

// readNonNegativeFloat repeats prompt until a number >= 0 is entered
func (s *Shell) readNonNegativeFloat(ctx context.Context, prompt string) (float64, error) {
	for {
		line, err := s.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		value, err := validate.NonNegativeFloat(line)
		if err != nil {
			s.println(sentence(err))
			continue
		}
		return value, nil
	}
}

// readNonNegativeInt repeats prompt until an integer >= 0 is entered
func (s *Shell) readNonNegativeInt(ctx context.Context, prompt string) (int, error) {
	for {
		line, err := s.readLine(ctx, prompt)
		if err != nil {
			return 0, err
		}
		value, err := validate.NonNegativeInt(line)
		if err != nil {
			s.println(sentence(err))
			continue
		}
		return value, nil
	}
}

// readID reads a product id once. ok is false when the input was not an
// integer; the caller abandons the operation in that case.
func (s *Shell) readID(ctx context.Context, prompt string) (id int, ok bool, err error) {
	line, err := s.readLine(ctx, prompt)
	if err != nil {
		return 0, false, err
	}
	id, convErr := validate.Int(line)
	if convErr != nil {
		s.println("Invalid ID.")
		return 0, false, nil
	}
	return id, true, nil
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) println(args ...interface{}) {
	fmt.Fprintln(s.out, args...)
}

// sentence turns a validation error into an operator message
func sentence(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}
