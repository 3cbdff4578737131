package norg

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkCompleted_FlipsSingleByte(t *testing.T) {
	path := writeFixture(t, "test.norg", fixture)
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	lenBefore := len(doc.Content())
	require.NoError(t, doc.MarkCompleted(0))

	assert.Equal(t, lenBefore, len(doc.Content()))
	assert.Equal(t, StateDone, doc.Todos[0].State)
	assert.Equal(t, "  - (x) This is a test %#taskid foobar1%", string(doc.Lines()[1]))
}

func TestMarkCompleted_IndexOutOfRange(t *testing.T) {
	path := writeFixture(t, "test.norg", fixture)
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	err = doc.MarkCompleted(99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClearTags_StripsTagAndSeparator(t *testing.T) {
	path := writeFixture(t, "test.norg", fixture)
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	require.NoError(t, doc.ClearTags([]int{0}))

	assert.Equal(t, "  - ( ) This is a test", string(doc.Lines()[1]))
	assert.Empty(t, doc.Todos[0].ID)
	assert.Equal(t, "This is a test", doc.Todos[0].Content)
}

func TestClearTags_SkipsUntagged(t *testing.T) {
	path := writeFixture(t, "test.norg", fixture)
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	require.NoError(t, doc.ClearTags([]int{3}))
	assert.Equal(t, "  - ( ) Untagged task", string(doc.Lines()[4]))
}

func TestUpdateTaskTitles_RewritesContentSpan(t *testing.T) {
	path := writeFixture(t, "test.norg", "* TODOs\n  - ( ) Buy milk %#taskid abc%\n")
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	require.NoError(t, doc.UpdateTaskTitles([]TitleUpdate{{Index: 0, Title: "Buy bread"}}))

	assert.Equal(t, "  - ( ) Buy bread %#taskid abc%", string(doc.Lines()[1]))
	assert.Equal(t, "Buy bread", doc.Todos[0].Content)
	assert.Equal(t, "abc", doc.Todos[0].ID)
}

func TestUpdateTaskTitles_UntaggedLine(t *testing.T) {
	path := writeFixture(t, "test.norg", "* TODOs\n  - ( ) Old text\n")
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	require.NoError(t, doc.UpdateTaskTitles([]TitleUpdate{{Index: 0, Title: "New text"}}))
	assert.Equal(t, "  - ( ) New text", string(doc.Lines()[1]))
}

func TestAppendID_RoundTrips(t *testing.T) {
	path := writeFixture(t, "test.norg", "* TODOs\n  - ( ) Call dentist\n")
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	todo := doc.Todos[0]
	todo.ID = "xyz9"
	lines := doc.Lines()
	lines[todo.Line] = todo.AppendID(lines[todo.Line])
	require.NoError(t, doc.SetLines(lines))

	assert.Equal(t, "  - ( ) Call dentist %#taskid xyz9%", string(doc.Lines()[1]))
	assert.Equal(t, "xyz9", doc.Todos[0].ID)
	assert.Equal(t, "Call dentist", doc.Todos[0].Content)
}

func TestIdxByTodoID(t *testing.T) {
	path := writeFixture(t, "test.norg", fixture)
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	idx, err := doc.IdxByTodoID("foobar2")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = doc.IdxByTodoID("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBackup_CopiesOriginalFromDisk(t *testing.T) {
	path := writeFixture(t, "test.norg", fixture)
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	require.NoError(t, doc.MarkCompleted(0))
	require.NoError(t, doc.Backup())

	backupPath, err := doc.BackupPath()
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(backupPath) })

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, fixture, string(data))
}

func TestWrite_PersistsBuffer(t *testing.T) {
	path := writeFixture(t, "test.norg", fixture)
	doc, err := Open(path, Options{SectionTodos: "TODOs"})
	require.NoError(t, err)

	require.NoError(t, doc.MarkCompleted(0))
	require.NoError(t, doc.Write())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(doc.Content()), string(data))
}
