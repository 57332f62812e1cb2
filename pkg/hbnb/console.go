package hbnb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hbnbclone/hbnb/pkg/models"
	"github.com/hbnbclone/hbnb/pkg/storage"
)

// Prompt is printed before every console line when the input is a terminal.
const Prompt = "(hbnb) "

// Exec runs cmd and writes its output to w.
func (a *App) Exec(ctx context.Context, w io.Writer, cmd Command) error {
	switch c := cmd.(type) {
	case *CreateCommand:
		return a.Create(ctx, w, c)
	case *ShowCommand:
		return a.Show(ctx, w, c)
	case *DestroyCommand:
		return a.Destroy(ctx, c)
	case *AllCommand:
		return a.All(ctx, w, c)
	case *CountCommand:
		return a.Count(ctx, w, c)
	case *UpdateCommand:
		return a.Update(ctx, c)
	case *MigrateCommand:
		return a.Migrate(ctx)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name())
}

func parseClass(class string) (models.Kind, error) {
	if class == "" {
		return "", ErrClassMissing
	}
	kind, err := models.ParseKind(class)
	if err != nil {
		return "", ErrClassUnknown
	}
	return kind, nil
}

// lookup resolves a class and id to a stored entity.
func (a *App) lookup(ctx context.Context, class, id string) (models.Entity, error) {
	kind, err := parseClass(class)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDMissing
	}
	e, err := a.store.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

func (a *App) Create(ctx context.Context, w io.Writer, c *CreateCommand) error {
	kind, err := parseClass(c.Class)
	if err != nil {
		return err
	}
	e, err := a.factory.New(kind, parseParams(c.Params))
	if err != nil {
		return err
	}
	if err := a.factory.Save(ctx, a.store, e); err != nil {
		return err
	}
	a.log.Info().Str("key", models.Key(e)).Msg("created")
	_, err = fmt.Fprintln(w, e.Meta().ID)
	return err
}

// parseParams reads key=value creation parameters. The id and the
// timestamps are always generated, so they are skipped with the pairs that
// do not parse.
func parseParams(params []string) map[string]any {
	fields := make(map[string]any, len(params))
	for _, p := range params {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" || raw == "" {
			continue
		}
		switch key {
		case "id", "created_at", "updated_at", models.ClassKey:
			continue
		}
		if v, ok := parseParamValue(raw); ok {
			fields[key] = v
		}
	}
	return fields
}

func parseParamValue(raw string) (any, bool) {
	if strings.HasPrefix(raw, `"`) {
		if len(raw) < 2 || !strings.HasSuffix(raw, `"`) {
			return nil, false
		}
		s := raw[1 : len(raw)-1]
		if strings.Contains(strings.ReplaceAll(s, `\"`, ""), `"`) {
			return nil, false
		}
		s = strings.ReplaceAll(s, `\"`, `"`)
		return strings.ReplaceAll(s, "_", " "), true
	}
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		return f, err == nil
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (a *App) Show(ctx context.Context, w io.Writer, c *ShowCommand) error {
	e, err := a.lookup(ctx, c.Class, c.ID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, models.String(e))
	return err
}

func (a *App) Destroy(ctx context.Context, c *DestroyCommand) error {
	e, err := a.lookup(ctx, c.Class, c.ID)
	if err != nil {
		return err
	}
	if err := models.Delete(ctx, a.store, e); err != nil {
		return err
	}
	a.log.Info().Str("key", models.Key(e)).Msg("destroyed")
	return nil
}

// All prints one entity per line, ordered by key.
func (a *App) All(ctx context.Context, w io.Writer, c *AllCommand) error {
	var kind models.Kind
	if c.Class != "" {
		var err error
		if kind, err = parseClass(c.Class); err != nil {
			return err
		}
	}
	objects, err := a.store.All(ctx, kind)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintln(w, models.String(objects[k])); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) Count(ctx context.Context, w io.Writer, c *CountCommand) error {
	var kind models.Kind
	if c.Class != "" {
		var err error
		if kind, err = parseClass(c.Class); err != nil {
			return err
		}
	}
	n, err := a.store.Count(ctx, kind)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, n)
	return err
}

// Update applies the changes to a copy of the stored entity, so that a
// rejected or failed update leaves the stored one untouched.
func (a *App) Update(ctx context.Context, c *UpdateCommand) error {
	stored, err := a.lookup(ctx, c.Class, c.ID)
	if err != nil {
		return err
	}
	if c.Fields == nil {
		if c.Attr == "" {
			return ErrAttrMissing
		}
		if c.Value == "" {
			return ErrValueMissing
		}
	}

	e, err := a.factory.FromMap(models.ToMap(stored))
	if err != nil {
		return err
	}
	if c.Fields != nil {
		for name, v := range c.Fields {
			if err := a.set(e, name, v); err != nil {
				return err
			}
		}
	} else if err := a.set(e, c.Attr, c.Value); err != nil {
		return err
	}

	if err := a.factory.Save(ctx, a.store, e); err != nil {
		if rerr := a.store.New(ctx, stored); rerr != nil && !errors.Is(rerr, storage.ErrReadOnly) {
			a.log.Error().Err(rerr).Str("key", models.Key(stored)).Msg("failed to restore entity")
		}
		return err
	}
	a.log.Info().Str("key", models.Key(e)).Msg("updated")
	return nil
}

// set assigns one attribute. Strings are parsed by the declared type of the
// field; user passwords are hashed.
func (a *App) set(e models.Entity, name string, v any) error {
	if u, ok := e.(*models.User); ok && name == "password" {
		plain, ok := v.(string)
		if !ok {
			plain = fmt.Sprint(v)
		}
		return u.SetPassword(a.factory.Hasher(), plain)
	}
	if s, ok := v.(string); ok {
		return models.SetString(e, name, s)
	}
	return models.Set(e, name, v)
}

// Console reads commands from r, one per line, until EOF or "quit". Errors
// are printed to w and do not stop the loop, except for I/O errors and
// context cancellation.
func (a *App) Console(ctx context.Context, r io.Reader, w io.Writer, prompt bool) error {
	scanner := bufio.NewScanner(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if prompt {
			fmt.Fprint(w, Prompt)
		}
		if !scanner.Scan() {
			if prompt {
				fmt.Fprintln(w)
			}
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "EOF":
			return nil
		}

		cmd, err := ParseLine(line)
		if err == nil {
			err = a.Exec(ctx, w, cmd)
		}
		if err != nil {
			a.report(w, line, err)
		}
	}
}

func (a *App) report(w io.Writer, line string, err error) {
	for _, usage := range []error{ErrClassMissing, ErrClassUnknown, ErrIDMissing, ErrNotFound, ErrAttrMissing, ErrValueMissing} {
		if errors.Is(err, usage) {
			fmt.Fprintln(w, usage)
			return
		}
	}
	if errors.Is(err, ErrUnknownCommand) {
		fmt.Fprintf(w, "%s: %s\n", ErrUnknownCommand, line)
		return
	}
	a.log.Error().Err(err).Str("line", line).Msg("command failed")
	fmt.Fprintf(w, "** %v **\n", err)
}
