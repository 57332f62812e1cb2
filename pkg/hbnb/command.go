package hbnb

import "errors"

// Errors reported to the console user. They are printed as is.
var (
	ErrClassMissing   = errors.New("** class name missing **")
	ErrClassUnknown   = errors.New("** class doesn't exist **")
	ErrIDMissing      = errors.New("** instance id missing **")
	ErrNotFound       = errors.New("** no instance found **")
	ErrAttrMissing    = errors.New("** attribute name missing **")
	ErrValueMissing   = errors.New("** value missing **")
	ErrUnknownCommand = errors.New("*** Unknown syntax")
)

// Command is one operation of the interpreter. Its fields are the raw
// arguments; they are validated when the command runs.
type Command interface {
	// Name returns the word that selects the command.
	Name() string
}

// CreateCommand constructs an entity, saves it and prints its id.
//
// Params are key=value pairs. A value in double quotes is a string in which
// '_' stands for a space and \" for a quote; an unquoted value is an int, or
// a float when it contains a dot. Pairs that fit none of these are skipped.
type CreateCommand struct {
	Class  string
	Params []string
}

func (c *CreateCommand) Name() string { return "create" }

// ShowCommand prints one entity.
type ShowCommand struct {
	Class string
	ID    string
}

func (c *ShowCommand) Name() string { return "show" }

// DestroyCommand deletes one entity.
type DestroyCommand struct {
	Class string
	ID    string
}

func (c *DestroyCommand) Name() string { return "destroy" }

// AllCommand prints every entity, or every entity of Class.
type AllCommand struct {
	Class string
}

func (c *AllCommand) Name() string { return "all" }

// CountCommand prints the number of entities of Class, or of all kinds.
type CountCommand struct {
	Class string
}

func (c *CountCommand) Name() string { return "count" }

// UpdateCommand sets one attribute, or every entry of Fields when it is not
// nil, and saves the entity. The id and the timestamps cannot be updated.
type UpdateCommand struct {
	Class  string
	ID     string
	Attr   string
	Value  string
	Fields map[string]any
}

func (c *UpdateCommand) Name() string { return "update" }

// MigrateCommand creates or updates the relational schema. It does nothing
// in file mode.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// ConsoleCommand runs the interactive interpreter.
type ConsoleCommand struct{}

func (c *ConsoleCommand) Name() string { return "console" }
