package cli

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupppig/orderkey/internal/store"
)

type itemsResponse struct {
	Status string       `json:"status"`
	Data   []store.Item `json:"data"`
}

type itemResponse struct {
	Status string     `json:"status"`
	Data   store.Item `json:"data"`
}

func showList(t *testing.T, db, list string) []store.Item {
	t.Helper()
	out, err := execute(t, "--db", db, "--format", "json", "list", "show", list)
	require.NoError(t, err)
	var resp itemsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp.Data
}

func addItem(t *testing.T, db, list, title string, extra ...string) store.Item {
	t.Helper()
	args := append([]string{"--db", db, "--format", "json", "list", "add", list, title}, extra...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	var resp itemResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp.Data
}

func itemTitles(items []store.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestList_AddMoveShow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "recipes.db")

	addItem(t, db, "steps", "preheat")
	addItem(t, db, "steps", "whisk")
	bake := addItem(t, db, "steps", "bake")
	addItem(t, db, "steps", "grease pan", "--at", "1")

	assert.Equal(t, []string{"preheat", "grease pan", "whisk", "bake"}, itemTitles(showList(t, db, "steps")))

	_, err := execute(t, "--db", db, "list", "move", bake.ID, "0")
	require.NoError(t, err)
	assert.Equal(t, []string{"bake", "preheat", "grease pan", "whisk"}, itemTitles(showList(t, db, "steps")))

	_, err = execute(t, "--db", db, "list", "rm", bake.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"preheat", "grease pan", "whisk"}, itemTitles(showList(t, db, "steps")))
}

func TestList_ShowText(t *testing.T) {
	db := filepath.Join(t.TempDir(), "recipes.db")
	item := addItem(t, db, "steps", "whisk")

	out, err := execute(t, "--db", db, "list", "show", "steps")
	require.NoError(t, err)
	assert.Equal(t, "0\t"+item.ID+"\t\"!\"\twhisk\n", out)
}

func TestList_ShowEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "recipes.db")
	out, err := execute(t, "--db", db, "--format", "json", "list", "show", "nothing")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":[]}`, out)
}

func TestList_MoveFailure(t *testing.T) {
	db := filepath.Join(t.TempDir(), "recipes.db")
	a := addItem(t, db, "steps", "a")
	addItem(t, db, "steps", "b")
	before := showList(t, db, "steps")

	for _, args := range [][]string{
		{"list", "move", a.ID, "5"},
		{"list", "move", a.ID, "first"},
		{"list", "move", "no-such-id", "0"},
	} {
		_, err := execute(t, append([]string{"--db", db}, args...)...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err), args)
		assert.Contains(t, err.Error(), "couldn't reorder item", args)
	}

	// A rejected reorder leaves every position untouched.
	assert.Equal(t, before, showList(t, db, "steps"))
}

func TestList_Names(t *testing.T) {
	db := filepath.Join(t.TempDir(), "recipes.db")
	addItem(t, db, "steps", "whisk")
	addItem(t, db, "shopping", "eggs")

	out, err := execute(t, "--db", db, "list", "names")
	require.NoError(t, err)
	assert.Equal(t, "shopping\nsteps\n", out)
}

func TestList_Verify(t *testing.T) {
	db := filepath.Join(t.TempDir(), "recipes.db")
	addItem(t, db, "steps", "whisk")

	out, err := execute(t, "--db", db, "list", "verify", "steps")
	require.NoError(t, err)
	assert.Equal(t, "steps: ok\n", out)

	// Simulate a row written by a tool that does not validate keys.
	raw, err := sql.Open("sqlite", db)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO items (id, list, title, position, created_at) VALUES ('bad', 'steps', 'fold', 'x ', 0)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = execute(t, "--db", db, "list", "verify", "steps")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 malformed position")

	_, err = execute(t, "--db", db, "list", "show", "steps")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestList_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "orderkey.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database: "+db+"\nretries: 2\n"), 0o600))

	_, err := execute(t, "--config", cfgPath, "list", "add", "steps", "whisk")
	require.NoError(t, err)

	_, err = os.Stat(db)
	assert.NoError(t, err, "database should be created at the configured path")
}

func TestList_BadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "orderkey.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("retries: 0\n"), 0o600))

	_, err := execute(t, "--config", cfgPath, "list", "names")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
