// Command bridgectl is an interactive client for the toolbridge HTTP API.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

var serverURL = flag.String("server", "http://localhost:8005", "Base URL of the toolbridge API server")

func main() {
	flag.Parse()

	client := newClient(*serverURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bridgectl> ",
		HistoryFile:     historyFile(),
		AutoComplete:    commandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("Toolbridge client")
	fmt.Printf("Connected to: %s\n", *serverURL)
	fmt.Println("Type help for commands, quit to exit")
	fmt.Println()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		if err := runCommand(client, line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func runCommand(client *client, line string) error {
	command, rest := splitCommand(line)
	switch command {
	case "help":
		printHelp()
		return nil
	case "tools":
		return client.printTools()
	case "call":
		name, args := splitCommand(rest)
		if name == "" {
			return fmt.Errorf("usage: call <tool> [json arguments]")
		}
		return client.callTool(name, args)
	case "msg":
		if rest == "" {
			return fmt.Errorf("usage: msg <text>")
		}
		return client.sendMessage(rest)
	case "ask":
		if rest == "" {
			return fmt.Errorf("usage: ask <text>")
		}
		return client.sendMessageWithTools(rest)
	default:
		return fmt.Errorf("unknown command %q (try help)", command)
	}
}

func splitCommand(line string) (string, string) {
	parts := strings.SplitN(line, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  tools                    list available tools")
	fmt.Println("  call <tool> [json-args]  invoke a tool, e.g. call calculate {\"expression\": \"2+3*4\"}")
	fmt.Println("  msg <text>               send a message to the LLM")
	fmt.Println("  ask <text>               send a message annotated with the tool list")
	fmt.Println("  quit                     exit")
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.bridgectl_history"
}

func commandCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("tools"),
		readline.PcItem("call"),
		readline.PcItem("msg"),
		readline.PcItem("ask"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
