package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return out.String(), err
}

func TestFormatTable(t *testing.T) {
	t.Parallel()

	out := FormatTable(
		[]string{"PATENT", "STATUS"},
		[][]string{
			{"US1234567B2", "active"},
			{"US7654321B2", "expired"},
		},
	)

	assert.Contains(t, out, "PATENT       STATUS")
	assert.Contains(t, out, "-----------  -------")
	assert.Contains(t, out, "US1234567B2  active")
	assert.Contains(t, out, "US7654321B2  expired")
}

func TestFormatTableEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", FormatTable(nil, nil))
}

func TestFormatTableShortRow(t *testing.T) {
	t.Parallel()

	out := FormatTable([]string{"A", "B"}, [][]string{{"only"}})
	assert.Contains(t, out, "only")
}

func TestGetCLIContextMissing(t *testing.T) {
	t.Parallel()

	cmd := NewRootCommand()
	cmd.SetContext(context.Background())
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestTermCommandUtility(t *testing.T) {
	out, err := execute(t, "term", "--type", "utility", "--filing", "2010-06-01", "-o", "json")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "utility", result["patent_type"])
	assert.Contains(t, result["expiration_date"], "2030-05-27")
}

func TestTermCommandDesignHasNoFees(t *testing.T) {
	out, err := execute(t, "term", "--type", "design", "--grant", "2020-03-15", "-o", "json")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "design", result["patent_type"])
	assert.Nil(t, result["fees"])
}

func TestTermCommandDisclaimerCapsTerm(t *testing.T) {
	out, err := execute(t, "term",
		"--type", "utility", "--filing", "2010-06-01", "--disclaimer", "2025-01-01", "-o", "json")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result["expiration_date"], "2025-01-01")
}

func TestTermCommandValidation(t *testing.T) {
	_, err := execute(t, "term", "--type", "reissue", "--filing", "2010-06-01")
	assert.Error(t, err)

	_, err = execute(t, "term", "--type", "utility")
	assert.Error(t, err)

	_, err = execute(t, "term", "--type", "utility", "--filing", "June 2010")
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/search", r.URL.Path)
		assert.Equal(t, "battery separator", r.URL.Query().Get("q"))
		assert.Equal(t, "hybrid", r.URL.Query().Get("mode"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"patent_number": "US1234567B2", "title": "Separator", "score": 0.97, "status": "active"},
			},
			"total": 1, "page": 1, "page_size": 20, "mode": "hybrid",
		})
	}))
	defer srv.Close()

	out, err := execute(t, "search", "battery separator", "--server", srv.URL, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "US1234567B2")
	assert.Contains(t, out, "0.9700")
}

func TestLifecyclePayCommand(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	out, err := execute(t, "lifecycle", "pay", "US1234567B2", "7",
		"--date", "2026-06-15", "--server", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/patents/US1234567B2/fees/7/payments", gotPath)
	assert.Contains(t, out, "OK: fee year 7 paid")
}

func TestLifecyclePayRejectsBadYear(t *testing.T) {
	_, err := execute(t, "lifecycle", "pay", "US1234567B2", "seven")
	assert.Error(t, err)
}

func TestMostCitedCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/citations/most-cited", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"patent_number": "US1234567B2", "cited_by_count": 42},
			},
		})
	}))
	defer srv.Close()

	out, err := execute(t, "citations", "most-cited", "--limit", "5", "--server", srv.URL, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "US1234567B2")
	assert.Contains(t, out, "42")
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"code": "PAT_001", "message": "patent not found"})
	}))
	defer srv.Close()

	_, err := execute(t, "patents", "get", "US0000000B0", "--server", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patent not found")
}
