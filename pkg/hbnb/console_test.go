package hbnb

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/hbnbclone/hbnb/pkg/models"
	"github.com/hbnbclone/hbnb/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Storage:      storage.ModeFile,
		FilePath:     filepath.Join(t.TempDir(), "file.json"),
		PasswordHash: "md5",
		LogLevel:     "debug",
		LogWriter:    &bytes.Buffer{},
	}
}

func newTestApp(t *testing.T, config *Config) *App {
	t.Helper()
	app, err := New(context.Background(), config)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, app.Close())
	})
	return app
}

// run executes one console line and returns its output.
func run(t *testing.T, app *App, line string) (string, error) {
	t.Helper()
	cmd, err := ParseLine(line)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	err = app.Exec(context.Background(), &out, cmd)
	return out.String(), err
}

func mustRun(t *testing.T, app *App, line string) string {
	t.Helper()
	out, err := run(t, app, line)
	require.NoError(t, err, line)
	return strings.TrimSpace(out)
}

func TestCreateShowDestroy(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	id := mustRun(t, app, `create State name="New_York"`)
	assert.Regexp(t, uuidPattern, id)

	shown := mustRun(t, app, "show State "+id)
	assert.True(t, strings.HasPrefix(shown, "[State] ("+id+") {"), shown)
	assert.Contains(t, shown, "'name': 'New York'")

	assert.Equal(t, "1", mustRun(t, app, "count State"))
	mustRun(t, app, "destroy State "+id)
	assert.Equal(t, "0", mustRun(t, app, "State.count()"))

	_, err := run(t, app, "show State "+id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTypedParams(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx := context.Background()

	id := mustRun(t, app, `create Place name="Loft" number_rooms=3 latitude=37.77 bogus max_guest=two`)
	e, err := app.Store().Get(ctx, models.KindPlace, id)
	require.NoError(t, err)
	p := e.(*models.Place)
	assert.Equal(t, "Loft", p.Name)
	assert.Equal(t, 3, p.NumberRooms)
	assert.Equal(t, 37.77, p.Latitude)
	assert.Zero(t, p.MaxGuest)
	assert.Empty(t, p.Extra)
}

func TestUsageErrors(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	id := mustRun(t, app, "create User")

	tests := []struct {
		line string
		err  error
	}{
		{"create", ErrClassMissing},
		{"create Spaceship", ErrClassUnknown},
		{"show", ErrClassMissing},
		{"show Spaceship 1", ErrClassUnknown},
		{"show User", ErrIDMissing},
		{"show User nope", ErrNotFound},
		{"destroy User", ErrIDMissing},
		{"all Spaceship", ErrClassUnknown},
		{"count Spaceship", ErrClassUnknown},
		{"update", ErrClassMissing},
		{"update User", ErrIDMissing},
		{"update User nope", ErrNotFound},
		{"update User " + id, ErrAttrMissing},
		{"update User " + id + " first_name", ErrValueMissing},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			_, err := run(t, app, tc.line)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestUpdate(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	ctx := context.Background()

	id := mustRun(t, app, `create User email="a@b.c" password="secret"`)
	e, err := app.Store().Get(ctx, models.KindUser, id)
	require.NoError(t, err)
	u := e.(*models.User)
	before := u.UpdatedAt
	assert.Equal(t, "5ebe2294ecd0e0f08eab7690d2a6ee69", u.Password)

	mustRun(t, app, `update User `+id+` first_name "Betty"`)
	mustRun(t, app, `update User `+id+` password "hunter2"`)
	e, err = app.Store().Get(ctx, models.KindUser, id)
	require.NoError(t, err)
	u = e.(*models.User)
	assert.Equal(t, "Betty", u.FirstName)
	assert.True(t, u.CheckPassword(app.Factory().Hasher(), "hunter2"))
	assert.True(t, u.UpdatedAt.After(before))

	_, err = run(t, app, `update User `+id+` id "other"`)
	assert.ErrorIs(t, err, models.ErrProtected)
	_, err = run(t, app, `update User `+id+` created_at "2020-01-01T00:00:00.000000"`)
	assert.ErrorIs(t, err, models.ErrProtected)

	pid := mustRun(t, app, `create Place name="Loft"`)
	mustRun(t, app, `Place.update("`+pid+`", {"max_guest": 4, "description": "Sunny"})`)
	mustRun(t, app, `update Place `+pid+` number_rooms 2`)
	e, err = app.Store().Get(ctx, models.KindPlace, pid)
	require.NoError(t, err)
	p := e.(*models.Place)
	assert.Equal(t, 4, p.MaxGuest)
	assert.Equal(t, 2, p.NumberRooms)
	assert.Equal(t, "Sunny", p.Description)

	_, err = run(t, app, `update Place `+pid+` number_rooms many`)
	assert.ErrorIs(t, err, models.ErrInvalidField)
}

func TestRejectedUpdateLeavesEntityUntouched(t *testing.T) {
	config := testConfig(t)
	app := newTestApp(t, config)
	ctx := context.Background()

	id := mustRun(t, app, `create State name="Ohio"`)
	before := mustRun(t, app, "show State "+id)

	app.SetReadOnly(true)
	_, err := run(t, app, `update State `+id+` name "Iowa"`)
	require.ErrorIs(t, err, storage.ErrReadOnly)
	assert.Equal(t, before, mustRun(t, app, "show State "+id))

	app.SetReadOnly(false)
	mustRun(t, app, "create City")
	require.NoError(t, app.Store().Reload(ctx))
	assert.Equal(t, before, mustRun(t, app, "show State "+id))

	again := newTestApp(t, config)
	assert.Equal(t, before, mustRun(t, again, "show State "+id))
}

func TestInvalidDictUpdateAppliesNothing(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	id := mustRun(t, app, `create Place name="A" number_rooms=1`)
	before := mustRun(t, app, "show Place "+id)

	for i := 0; i < 10; i++ {
		_, err := run(t, app, `Place.update("`+id+`", {"name": "B", "max_guest": 3, "number_rooms": "many"})`)
		require.ErrorIs(t, err, models.ErrInvalidField)
		assert.Equal(t, before, mustRun(t, app, "show Place "+id))
	}
}

func TestFailedSaveRestoresEntity(t *testing.T) {
	config := testConfig(t)
	app := newTestApp(t, config)

	id := mustRun(t, app, `create State name="Ohio"`)
	before := mustRun(t, app, "show State "+id)

	// A directory in place of the file makes every write fail.
	require.NoError(t, os.Remove(config.FilePath))
	require.NoError(t, os.Mkdir(config.FilePath, 0o755))
	_, err := run(t, app, `update State `+id+` name "Iowa"`)
	require.Error(t, err)
	assert.Equal(t, before, mustRun(t, app, "show State "+id))
}

func TestAllOrderedByKey(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, mustRun(t, app, "create City"))
	}
	mustRun(t, app, "create State")

	lines := strings.Split(mustRun(t, app, "all City"), "\n")
	require.Len(t, lines, 3)
	for i := 1; i < len(lines); i++ {
		assert.Less(t, lines[i-1], lines[i])
	}
	assert.Len(t, strings.Split(mustRun(t, app, "all"), "\n"), 4)
	assert.Equal(t, "4", mustRun(t, app, "count"))
}

func TestPersistsAcrossRuns(t *testing.T) {
	config := testConfig(t)
	app, err := New(context.Background(), config)
	require.NoError(t, err)
	id := mustRun(t, app, `create Amenity name="Wifi"`)
	require.NoError(t, app.Close())

	data, err := os.ReadFile(config.FilePath)
	require.NoError(t, err)
	var records map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Equal(t, "Wifi", records["Amenity."+id]["name"])
	assert.Equal(t, "Amenity", records["Amenity."+id]["__class__"])

	app = newTestApp(t, config)
	assert.Contains(t, mustRun(t, app, "show Amenity "+id), "'name': 'Wifi'")
}

func TestReadOnly(t *testing.T) {
	config := testConfig(t)
	config.ReadOnly = true
	app := newTestApp(t, config)

	_, err := run(t, app, "create State")
	assert.ErrorIs(t, err, storage.ErrReadOnly)
	assert.ErrorIs(t, app.Migrate(context.Background()), storage.ErrReadOnly)
	assert.Equal(t, "0", mustRun(t, app, "count"))

	app.SetReadOnly(false)
	mustRun(t, app, "create State")
	assert.NoError(t, app.Migrate(context.Background()))
}

func TestConsole(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	in := strings.NewReader(strings.Join([]string{
		`create State name="Ohio"`,
		"",
		"State.count()",
		"show",
		"show Spaceship",
		"fly away",
		"quit",
		"count State",
	}, "\n"))
	var out bytes.Buffer
	require.NoError(t, app.Console(context.Background(), in, &out, false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Regexp(t, uuidPattern, lines[0])
	assert.Equal(t, "1", lines[1])
	assert.Equal(t, "** class name missing **", lines[2])
	assert.Equal(t, "** class doesn't exist **", lines[3])
	assert.Equal(t, "*** Unknown syntax: fly away", lines[4])
}

func TestConsolePrompt(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	var out bytes.Buffer
	require.NoError(t, app.Console(context.Background(), strings.NewReader("count\n"), &out, true))
	assert.Equal(t, Prompt+"0\n"+Prompt+"\n", out.String())
}

func TestRun(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "file.json")
	t.Setenv("HBNB_FILE_PATH", path)
	t.Setenv("HBNB_LOG_FILE", filepath.Join(t.TempDir(), "hbnb.log"))
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, Run(ctx, []string{"create", "City", `name="Akron"`}, nil, &out))
	id := strings.TrimSpace(out.String())

	out.Reset()
	require.NoError(t, Run(ctx, nil, strings.NewReader("show City "+id+"\n"), &out))
	assert.Contains(t, out.String(), "'name': 'Akron'")

	err := Run(ctx, []string{"show", "City", "nope"}, nil, &out)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Run(ctx, []string{"migrate"}, nil, &out))
}
