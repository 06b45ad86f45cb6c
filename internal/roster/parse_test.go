package roster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shiftsPage = `<!doctype html>
<html><body>
<table id="shifts">
  <thead><tr><th>Nome</th><th>Turno</th></tr></thead>
  <tbody>
    <tr><td> joao </td><td>manhã</td></tr>
    <tr><td>ana</td><td>
        tarde
    </td></tr>
    <tr><td></td><td>noite</td></tr>
    <tr><td>Maria  Clara</td><td>noite</td></tr>
    <tr><td>ana</td><td>madrugada</td></tr>
  </tbody>
</table>
</body></html>`

const membersPage = `<html><body>
<ul class="members">
  <li class="member"><span class="nick">ana</span><small>since 2023</small></li>
  <li class="member"><span class="nick"> Maria Clara </span></li>
  <li class="member"><span class="nick"></span></li>
</ul>
<div class="member">carlos</div>
</body></html>`

func TestParseRoster(t *testing.T) {
	got, err := ParseRoster(strings.NewReader(shiftsPage), RosterSelectors{
		Row:       "table#shifts tbody tr",
		Name:      "td:nth-child(1)",
		Attribute: "td:nth-child(2)",
	})
	require.NoError(t, err)

	assert.Equal(t, Roster{
		"joao":        "manhã",
		"ana":         "madrugada",
		"Maria Clara": "noite",
	}, got)
}

func TestParseRoster_NoAttributeSelector(t *testing.T) {
	got, err := ParseRoster(strings.NewReader(shiftsPage), RosterSelectors{
		Row:  "table#shifts tbody tr",
		Name: "td:nth-child(1)",
	})
	require.NoError(t, err)
	assert.Equal(t, Roster{"joao": "", "ana": "", "Maria Clara": ""}, got)
}

func TestParseRoster_NoRows(t *testing.T) {
	got, err := ParseRoster(strings.NewReader("<html><body><p>empty</p></body></html>"), RosterSelectors{
		Row:  "tr",
		Name: "td",
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseSet_WithNameSelector(t *testing.T) {
	got, err := ParseSet(strings.NewReader(membersPage), SetSelectors{
		Item: "li.member",
		Name: ".nick",
	})
	require.NoError(t, err)
	assert.Equal(t, NewSet("ana", "Maria Clara"), got)
}

func TestParseSet_ItemText(t *testing.T) {
	got, err := ParseSet(strings.NewReader(membersPage), SetSelectors{Item: "div.member"})
	require.NoError(t, err)
	assert.Equal(t, NewSet("carlos"), got)
}

func TestParseAndReconcile(t *testing.T) {
	shifts, err := ParseRoster(strings.NewReader(shiftsPage), RosterSelectors{
		Row:       "table#shifts tbody tr",
		Name:      "td:nth-child(1)",
		Attribute: "td:nth-child(2)",
	})
	require.NoError(t, err)

	members, err := ParseSet(strings.NewReader(membersPage), SetSelectors{Item: "li.member", Name: ".nick"})
	require.NoError(t, err)

	got := Reconcile(shifts, members)
	assert.Equal(t, Discrepancy{"joao": "manhã"}, got)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Maria Clara", cleanText("  Maria \n\t Clara "))
	assert.Equal(t, "", cleanText(" \n "))
}
