package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/jobz/internal/domain/jobtype"
)

func TestRunTypesListsBothTables(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runTypes(&commandContext{Ctx: context.Background(), Out: &out}, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(jobtype.All())+1)
	assert.Contains(t, lines[0], "Family")

	byType := map[string][]string{}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		byType[fields[0]] = fields[1:]
	}
	assert.Equal(t, []string{"Job", "job_events", "jobs", "job_events"}, byType["playbook"])
	assert.Equal(t, []string{"WorkflowJob", "events", "-", "-"}, byType["workflow"])
	assert.Equal(t, []string{"-", "-", "inventory_updates", "inventory_update_events"}, byType["inventory"])
}

func TestRunGroupsScopesEventStream(t *testing.T) {
	var out bytes.Buffer
	cmdCtx := &commandContext{Ctx: context.Background(), Out: &out}
	require.NoError(t, runGroups(cmdCtx, []string{"system", "7"}))

	first, rest, ok := strings.Cut(out.String(), "\n")
	require.True(t, ok)
	assert.Equal(t, "namespace: ws-system_job_events-7", first)

	var state struct {
		Groups map[string][]string `json:"groups"`
	}
	require.NoError(t, json.Unmarshal([]byte(rest), &state))
	assert.Equal(t, map[string][]string{
		"system_jobs":       {"status_changed", "summary"},
		"system_job_events": {"7"},
	}, state.Groups)
}

func TestRunGroupsRejectsWorkflow(t *testing.T) {
	var out bytes.Buffer
	err := runGroups(&commandContext{Ctx: context.Background(), Out: &out}, []string{"workflow", "5"})
	require.ErrorIs(t, err, jobtype.ErrUnsupportedType)
	assert.Empty(t, out.String())
}

func TestParseResolveFlags(t *testing.T) {
	opts, err := parseResolveFlags([]string{"-timeout", "5s", "playbook", "42", "failed:true"})
	require.NoError(t, err)
	assert.Equal(t, jobtype.TypePlaybook, opts.Params.Type)
	assert.Equal(t, "42", opts.Params.ID)
	assert.Equal(t, "failed:true", opts.Params.JobEventSearch)
	assert.Equal(t, 5*time.Second, opts.Timeout)

	opts, err = parseResolveFlags([]string{"-search", "host_name:web1", "command", "9", "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "host_name:web1", opts.Params.JobEventSearch)
	assert.Equal(t, defaultResolveTimeout, opts.Timeout)

	_, err = parseResolveFlags([]string{"playbook"})
	require.Error(t, err)

	opts, err = parseResolveFlags([]string{"playbook", "42", "stdout__icontains%3A100%25+x"})
	require.NoError(t, err)
	assert.Equal(t, "stdout__icontains:100%+x", opts.Params.JobEventSearch)

	_, err = parseResolveFlags([]string{"-search", "bad%zz", "playbook", "42"})
	require.Error(t, err)

	_, err = parseResolveFlags([]string{"bogus", "1"})
	require.ErrorIs(t, err, jobtype.ErrInvalidType)
}

func TestPrintUsageListsCommands(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printUsage(&out))
	for name := range commands() {
		assert.Contains(t, out.String(), name)
	}
}
