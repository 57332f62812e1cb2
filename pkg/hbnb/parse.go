package hbnb

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hbnbclone/hbnb/pkg/storage"
)

// Parse parses command line arguments into the command to execute and the
// application configuration. Flags default to the environment; with no
// command left after the flags, the interactive console is selected.
func Parse(args []string) (Command, *Config, error) {
	config := ConfigFromEnv()

	flagSet := flag.NewFlagSet("hbnb", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	var (
		mode     = flagSet.String("storage", config.Storage.String(), "Storage engine: db or file")
		file     = flagSet.String("file", config.FilePath, "Path of the file storage")
		dsn      = flagSet.String("dsn", config.DSN, "PostgreSQL connection string")
		env      = flagSet.String("env", config.Env, "Environment; test drops every table on start")
		hash     = flagSet.String("password-hash", config.PasswordHash, "Password hasher: bcrypt or md5")
		logLevel = flagSet.String("log-level", config.LogLevel, "Log level")
		logFile  = flagSet.String("log-file", config.LogFile, "Append logs to this file instead of stderr")
		readOnly = flagSet.Bool("read-only", false, "Reject every write")
		slow     = flagSet.Duration("slow-query", config.SlowQuery, "Log SQL statements slower than this as warnings")
	)
	if err := flagSet.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w\n\n%s", err, usage)
	}

	config.Storage = storage.ParseMode(*mode)
	config.FilePath = *file
	config.DSN = *dsn
	config.Env = *env
	config.PasswordHash = *hash
	config.LogLevel = *logLevel
	config.LogFile = *logFile
	config.ReadOnly = *readOnly
	config.SlowQuery = *slow

	if flagSet.NArg() == 0 {
		return &ConsoleCommand{}, config, nil
	}
	cmd, err := ParseCommand(flagSet.Args())
	if err != nil {
		return nil, nil, err
	}
	return cmd, config, nil
}

const usage = `Usage: hbnb [flags] [command]

Commands:
  create <Class> [key=value ...]
  show <Class> <id>
  destroy <Class> <id>
  all [Class]
  count [Class]
  update <Class> <id> <attribute> <value>
  migrate
  console          (default) read commands from stdin

Flags:
  -storage db|file   -file path   -dsn dsn   -env name
  -password-hash bcrypt|md5   -log-level level   -log-file path   -read-only
  -slow-query duration`

// ParseCommand builds the command named by words[0] from the remaining
// words. Missing arguments are left empty; they are reported when the
// command runs.
func ParseCommand(words []string) (Command, error) {
	if len(words) == 0 {
		return nil, ErrUnknownCommand
	}
	arg := func(i int) string {
		if i < len(words) {
			return words[i]
		}
		return ""
	}

	switch words[0] {
	case "create":
		c := &CreateCommand{Class: arg(1)}
		if len(words) > 2 {
			c.Params = words[2:]
		}
		return c, nil
	case "show":
		return &ShowCommand{Class: arg(1), ID: unquote(arg(2))}, nil
	case "destroy":
		return &DestroyCommand{Class: arg(1), ID: unquote(arg(2))}, nil
	case "all":
		return &AllCommand{Class: arg(1)}, nil
	case "count":
		return &CountCommand{Class: arg(1)}, nil
	case "update":
		return &UpdateCommand{Class: arg(1), ID: unquote(arg(2)), Attr: unquote(arg(3)), Value: unquote(arg(4))}, nil
	case "migrate":
		return &MigrateCommand{}, nil
	case "console":
		return &ConsoleCommand{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, words[0])
}

var dotCall = regexp.MustCompile(`^(\w+)\.(\w+)\((.*)\)$`)

// ParseLine parses one console line. Besides "verb Class args...", it
// accepts the method form Class.verb(args), e.g. User.show("id") or
// Place.update("id", {"max_guest": 4}).
func ParseLine(line string) (Command, error) {
	line = strings.TrimSpace(line)
	m := dotCall.FindStringSubmatch(line)
	if m == nil {
		return ParseCommand(splitWords(line))
	}

	class, verb, rest := m[1], m[2], strings.TrimSpace(m[3])
	if verb == "update" {
		if id, dict, ok := strings.Cut(rest, "{"); ok {
			fields, err := parseDict("{" + dict)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnknownCommand, err)
			}
			id = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(id), ","))
			return &UpdateCommand{Class: class, ID: unquote(id), Fields: fields}, nil
		}
	}

	return ParseCommand(append([]string{verb, class}, splitArgs(rest)...))
}

// splitWords splits on blanks outside double quotes. Quotes are kept.
func splitWords(s string) []string {
	var (
		words   []string
		cur     strings.Builder
		quoted  bool
		escaped bool
		inWord  bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t'):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
			continue
		}
		cur.WriteRune(r)
		inWord = true
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words
}

// splitArgs splits the argument list of a method call on commas outside
// double quotes.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var (
		args   []string
		start  int
		quoted bool
	)
	for i, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `\"`, `"`)
	}
	return s
}

// parseDict reads a {"key": value} literal. Single quotes are accepted in
// place of double quotes.
func parseDict(s string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
