package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name string
		a    Roster
		b    Set
		want Discrepancy
	}{
		{
			name: "one missing",
			a:    Roster{"joao": "manhã", "ana": "tarde"},
			b:    NewSet("ana"),
			want: Discrepancy{"joao": "manhã"},
		},
		{
			name: "empty A",
			a:    Roster{},
			b:    NewSet("ana", "joao"),
			want: Discrepancy{},
		},
		{
			name: "empty B returns all of A",
			a:    Roster{"joao": "manhã", "ana": "tarde"},
			b:    NewSet(),
			want: Discrepancy{"joao": "manhã", "ana": "tarde"},
		},
		{
			name: "both empty",
			a:    Roster{},
			b:    Set{},
			want: Discrepancy{},
		},
		{
			name: "nil inputs",
			a:    nil,
			b:    nil,
			want: Discrepancy{},
		},
		{
			name: "extra names in B are ignored",
			a:    Roster{"ana": "tarde"},
			b:    NewSet("ana", "bia", "carlos"),
			want: Discrepancy{},
		},
		{
			name: "names are case sensitive",
			a:    Roster{"Ana": "noite"},
			b:    NewSet("ana"),
			want: Discrepancy{"Ana": "noite"},
		},
		{
			name: "empty attribute is kept",
			a:    Roster{"davi": ""},
			b:    NewSet(),
			want: Discrepancy{"davi": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.a, tt.b)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReconcile_Properties(t *testing.T) {
	rosters := []Roster{
		{},
		{"ana": "tarde"},
		{"joao": "manhã", "ana": "tarde", "bia": "noite", "carlos": ""},
	}
	sets := []Set{
		NewSet(),
		NewSet("ana"),
		NewSet("bia", "carlos", "zé"),
	}

	for _, a := range rosters {
		// reconciling a roster against its own names yields nothing
		assert.Empty(t, Reconcile(a, a.Keys()))
		// an empty reference returns the whole roster
		assert.Equal(t, Discrepancy(a), Reconcile(a, NewSet()))

		for _, b := range sets {
			got := Reconcile(a, b)
			for name, attr := range got {
				want, inA := a[name]
				assert.True(t, inA, "%q not in A", name)
				assert.Equal(t, want, attr)
				assert.False(t, b.Has(name), "%q is in B", name)
			}
			for name := range a {
				_, inGot := got[name]
				assert.Equal(t, !b.Has(name), inGot, "membership of %q", name)
			}
		}
	}

	for _, b := range sets {
		assert.Empty(t, Reconcile(Roster{}, b))
	}
}

func TestReconcile_DoesNotModifyInputs(t *testing.T) {
	a := Roster{"joao": "manhã", "ana": "tarde"}
	b := NewSet("ana")

	got := Reconcile(a, b)
	got["extra"] = "x"

	assert.Equal(t, Roster{"joao": "manhã", "ana": "tarde"}, a)
	assert.Equal(t, NewSet("ana"), b)
}

func TestDiscrepancy_NamesSorted(t *testing.T) {
	d := Discrepancy{"joao": "manhã", "ana": "tarde", "Bia": "noite", "carlos": ""}
	assert.Equal(t, []string{"Bia", "ana", "carlos", "joao"}, d.Names())
	assert.Empty(t, Discrepancy{}.Names())
}

func TestRoster_NamesAndKeys(t *testing.T) {
	r := Roster{"joao": "manhã", "ana": "tarde"}
	assert.Equal(t, []string{"ana", "joao"}, r.Names())
	assert.Equal(t, NewSet("ana", "joao"), r.Keys())
}

func TestSet_Has(t *testing.T) {
	s := NewSet("ana", "ana", "joao")
	assert.Len(t, s, 2)
	assert.True(t, s.Has("ana"))
	assert.False(t, s.Has("bia"))

	var empty Set
	assert.False(t, empty.Has("ana"))
}
