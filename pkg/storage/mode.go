package storage

// Mode selects the storage engine.
type Mode string

const (
	// ModeDB selects the relational engine.
	ModeDB Mode = "db"
	// ModeFile selects the flat file engine.
	ModeFile Mode = "file"
)

// ParseMode maps the configured value onto a Mode. Only "db" selects the
// relational engine; every other value, including the empty string, selects
// the file engine.
func ParseMode(s string) Mode {
	if s == string(ModeDB) {
		return ModeDB
	}
	return ModeFile
}

func (m Mode) String() string {
	return string(m)
}
