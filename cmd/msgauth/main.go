package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/msgauth"
	"github.com/iov-one/msgauth/errors"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. It is the responsibility
// of the command function to parse the arguments using the flag package.
// Commands that use the ledger read the configuration file pointed by the
// -config flag or the MSGAUTH_CONFIG environment variable.
//
// Commands can be combined using a unix pipe, for example
//
//	$ echo '"hello"' | msgauth hash -account 0x... -chain 1
//	$ echo '"hello"' | msgauth propose -account 0x... -signature 0x... \
//	    | jq -r .hash
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"confirm": cmdConfirm,
	"decode":  cmdDecode,
	"hash":    cmdHash,
	"list":    cmdList,
	"propose": cmdPropose,
	"show":    cmdShow,
	"version": cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s collects owner confirmations of multi-party account messages.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := execute(run, os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		// Set MSGAUTH_DEBUG to see internal errors with their stack.
		code, msg := errors.Outcome(err, os.Getenv("MSGAUTH_DEBUG") != "")
		fmt.Fprintf(os.Stderr, "error %d: %s\n", code, msg)
		os.Exit(1)
	}
}

// execute runs a command, turning a panic into an error.
func execute(run func(io.Reader, io.Writer, []string) error, in io.Reader, out io.Writer, args []string) (err error) {
	defer errors.Recover(&err)
	return run(in, out, args)
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, msgauth.Version())
	return nil
}
