package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/search"
)

func TestFinancials_SummarizesFilings(t *testing.T) {
	scripted := &scriptedSearch{results: map[string][]search.Result{
		"Acme Robotics revenue annual report": {
			{Title: "Acme 10-K", URL: "https://sec.example.com/acme", Snippet: "Revenue grew 40% to 120M."},
			{Title: "Analyst note", URL: "https://sec.example.com/acme", Snippet: "Gross margin improved to 55%."},
			{Title: "Earnings call", URL: "https://ir.example.com/q4", Snippet: "Guidance raised for next year."},
		},
	}}
	ag := NewFinancials(newTestDeps(t, scripted))

	assert.Equal(t, "financials", ag.Descriptor().Name)
	assert.Equal(t, []string{FieldProfile}, ag.Descriptor().Reads)
	assert.Equal(t, []string{FieldFinancials}, ag.Descriptor().Writes)

	view := map[string]any{FieldProfile: "Acme Robotics is a publicly traded robotics maker."}
	res, err := ag.Run(context.Background(), makeRunContext(t, acme(), view))
	require.NoError(t, err)

	fin := res.Fields[FieldFinancials]
	require.Equal(t, core.StatusFound, fin.Status)

	value, ok := fin.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Revenue grew 40% to 120M. Gross margin improved to 55%. Guidance raised for next year.", value["summary"])
	// Duplicate source URLs collapse.
	assert.Equal(t, []string{"https://sec.example.com/acme", "https://ir.example.com/q4"}, value["sources"])
	assert.Equal(t, 1, res.Usage.Calls)
}

func TestFinancials_PrivateHintSkipsSearch(t *testing.T) {
	scripted := &scriptedSearch{}
	ag := NewFinancials(newTestDeps(t, scripted))

	subject := core.Subject{
		Name:  "Acme Robotics",
		Hints: map[string]string{"ownership": "Private"},
	}

	res, err := ag.Run(context.Background(), makeRunContext(t, subject, nil))
	require.NoError(t, err)

	fin := res.Fields[FieldFinancials]
	assert.Equal(t, core.StatusNotApplicable, fin.Status)
	// No lookup spent on a company with no public financials.
	assert.Empty(t, scripted.seenQueries())
	assert.Zero(t, res.Usage.Calls)
}

func TestFinancials_ProfileWordingSkipsSearch(t *testing.T) {
	scripted := &scriptedSearch{}
	ag := NewFinancials(newTestDeps(t, scripted))

	view := map[string]any{
		FieldProfile: "Acme Robotics is a Privately Held maker of industrial robot arms.",
	}

	res, err := ag.Run(context.Background(), makeRunContext(t, acme(), view))
	require.NoError(t, err)

	assert.Equal(t, core.StatusNotApplicable, res.Fields[FieldFinancials].Status)
	assert.Empty(t, scripted.seenQueries())
}

func TestFinancials_NoUsableData(t *testing.T) {
	scripted := &scriptedSearch{results: map[string][]search.Result{
		"Acme Robotics revenue annual report": {
			{Title: "Paywalled", Snippet: "  "},
		},
	}}
	ag := NewFinancials(newTestDeps(t, scripted))

	res, err := ag.Run(context.Background(), makeRunContext(t, acme(), nil))
	require.NoError(t, err)

	fin := res.Fields[FieldFinancials]
	require.Equal(t, core.StatusFailed, fin.Status)
	assert.Equal(t, "no financial data found", fin.Reason)
}
