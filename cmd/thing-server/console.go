package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/coapthing/coapthing-go/pkg/registry"
)

// console is the interactive prompt over the running registry.
type console struct {
	things registry.Registry
	rl     *readline.Instance
}

func newConsole(things registry.Registry) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "thing> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &console{things: things, rl: rl}, nil
}

// run reads commands until exit or EOF.
func (c *console) run() {
	defer c.rl.Close()

	c.printHelp()
	for {
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			c.printHelp()
		case "things":
			for i, t := range c.things.Things() {
				fmt.Printf("  [%d] %s (%s)\n", i, t.Title(), t.ID())
			}
		case "props":
			t, err := c.things.Get(arg(fields, 1))
			if err != nil {
				fmt.Println("  no such thing")
				continue
			}
			for _, name := range t.PropertyNames() {
				value, _ := t.GetProperty(name)
				fmt.Printf("  %s = %v\n", name, value)
			}
		case "get":
			if len(fields) < 2 {
				fmt.Println("  usage: get <property> [thing]")
				continue
			}
			t, err := c.things.Get(arg(fields, 2))
			if err != nil {
				fmt.Println("  no such thing")
				continue
			}
			value, err := t.GetProperty(fields[1])
			if err != nil {
				fmt.Println("  no such property")
				continue
			}
			fmt.Printf("  %s = %v\n", fields[1], value)
		case "set":
			if len(fields) < 3 {
				fmt.Println("  usage: set <property> <value> [thing]")
				continue
			}
			t, err := c.things.Get(arg(fields, 3))
			if err != nil {
				fmt.Println("  no such thing")
				continue
			}
			var value any
			if err := json.Unmarshal([]byte(fields[2]), &value); err != nil {
				value = fields[2]
			}
			if !t.HasProperty(fields[1]) {
				fmt.Println("  no such property")
				continue
			}
			if err := t.SetProperty(fields[1], value); err != nil {
				fmt.Printf("  rejected: %v\n", err)
				continue
			}
			fmt.Println("  ok")
		case "actions":
			t, err := c.things.Get(arg(fields, 1))
			if err != nil {
				fmt.Println("  no such thing")
				continue
			}
			for _, d := range t.ActionDescriptions("") {
				out, _ := json.Marshal(d)
				fmt.Printf("  %s\n", out)
			}
		case "exit", "quit":
			return
		default:
			fmt.Printf("  unknown command %q, try help\n", fields[0])
		}
	}
}

func (c *console) printHelp() {
	fmt.Print(`Commands:
  things                         list registered things
  props [thing]                  list property values
  get <property> [thing]         read one property
  set <property> <value> [thing] write one property (value is JSON)
  actions [thing]                list live action instances
  exit
`)
}

// arg returns the i-th field or "0", the default thing selector.
func arg(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return "0"
}
