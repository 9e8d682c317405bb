package check

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSVColumnOrder(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	list := []Completion{
		{ID: "a", ParticipantID: "p1", WrongAttempts: 0, CompletedAt: at,
			Answers: map[string]string{"q_input_10": "ten", "q_input_2": "two"}},
		{ID: "b", ParticipantID: "p2", WrongAttempts: 2, CompletedAt: at,
			Answers: map[string]string{"q_input_2": "deux"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, list))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,participant_id,wrong_attempts,completed_at,q_input_2,q_input_10", lines[0])
	assert.Equal(t, "a,p1,0,2024-05-01T12:00:00Z,two,ten", lines[1])
	assert.Equal(t, "b,p2,2,2024-05-01T12:00:00Z,deux,", lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "id,participant_id,wrong_attempts,completed_at\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	list := []Completion{
		{ID: "a", ParticipantID: "p1", WrongAttempts: 3, CompletedAt: at,
			Answers: map[string]string{"q_input_0": "cat", "q_input_1": "dog"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, list))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"id", "participant_id", "wrong_attempts", "completed_at", "q_input_0", "q_input_1"}, rows[0])
	assert.Equal(t, []string{"a", "p1", "3", "2024-05-01T12:00:00Z", "cat", "dog"}, rows[1])
}
