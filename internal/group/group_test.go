package group

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/fingerprint"
	"github.com/praefixum/praefixum/internal/idformat"
	"github.com/praefixum/praefixum/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func declaration(names ...string) decl.Declaration {
	d := decl.Declaration{Namespace: "Demo"}
	for _, name := range names {
		d.Chain = append(d.Chain, decl.TypeName{Name: name})
	}
	return d
}

func mkSite(d decl.Declaration, member, param string, line, col int, f idformat.Format) site.Site {
	return site.Site{
		Declaration: d,
		Key:         d.Key(),
		Member:      member,
		Parameter:   param,
		Coordinates: fingerprint.Coordinates{Path: "src/Widget.cs", Member: member, Parameter: param, Line: line, Column: col},
		Format:      f,
	}
}

func values(r *Result) map[decl.Key]map[string]string {
	out := make(map[decl.Key]map[string]string)
	for _, key := range r.Keys() {
		b, _ := r.Bucket(key)
		out[key] = make(map[string]string)
		for _, binding := range b.Bindings() {
			out[key][binding.Name()] = binding.Value
		}
	}
	return out
}

func TestGroupTwoMembersOneDeclaration(t *testing.T) {
	w := declaration("Widget")
	sites := []site.Site{
		mkSite(w, "A", "x", 4, 10, idformat.Hex16),
		mkSite(w, "B", "y", 9, 3, idformat.Hex16),
	}

	result, err := Group(context.Background(), sites, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())

	b, ok := result.Bucket(w.Key())
	require.True(t, ok)
	bindings := b.Bindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, "A_x_Id", bindings[0].Name())
	assert.Equal(t, "B_y_Id", bindings[1].Name())
	assert.Equal(t, "bb62d830328be114", bindings[0].Value)
	assert.Equal(t, "5c2680450c93a485", bindings[1].Value)
	assert.NotEqual(t, bindings[0].Value, bindings[1].Value)
}

func TestGroupBucketsByDeclaration(t *testing.T) {
	w := declaration("Widget")
	inner := declaration("Widget", "Inner")
	sites := []site.Site{
		mkSite(w, "A", "x", 1, 1, idformat.Hex8),
		mkSite(inner, "A", "x", 2, 1, idformat.Hex8),
		mkSite(w, "A", "y", 1, 9, idformat.UUID),
	}

	result, err := Group(context.Background(), sites, Options{Workers: 2})
	require.NoError(t, err)

	want := map[decl.Key]map[string]string{
		w.Key(): {
			"A_x_Id": Identifier(sites[0].Coordinates, idformat.Hex8),
			"A_y_Id": Identifier(sites[2].Coordinates, idformat.UUID),
		},
		inner.Key(): {
			"A_x_Id": Identifier(sites[1].Coordinates, idformat.Hex8),
		},
	}
	if diff := cmp.Diff(want, values(result)); diff != "" {
		t.Fatalf("unexpected grouping (-want +got):\n%s", diff)
	}
	assert.Equal(t, []decl.Key{"Demo.Widget", "Demo.Widget.Inner"}, result.Keys())
}

func TestGroupEmpty(t *testing.T) {
	result, err := Group(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
	assert.Empty(t, result.Keys())
}

func TestGroupIsDeterministicAcrossWorkerCounts(t *testing.T) {
	var sites []site.Site
	for i := 0; i < 200; i++ {
		d := declaration(fmt.Sprintf("Type%d", i%7))
		sites = append(sites, mkSite(d, fmt.Sprintf("M%d", i%13), fmt.Sprintf("p%d", i), i, i%5, idformat.All()[i%5]))
	}

	serial, err := Group(context.Background(), sites, Options{Workers: 1})
	require.NoError(t, err)
	parallel, err := Group(context.Background(), sites, Options{Workers: 16})
	require.NoError(t, err)

	if diff := cmp.Diff(values(serial), values(parallel)); diff != "" {
		t.Fatalf("parallel grouping differs (-serial +parallel):\n%s", diff)
	}
	total := 0
	for _, key := range serial.Keys() {
		b, _ := serial.Bucket(key)
		total += b.Len()
	}
	assert.Equal(t, len(sites), total)
}

func TestGroupHTMLIDsAreDistinct(t *testing.T) {
	w := declaration("Widget")
	var sites []site.Site
	for i := 0; i < 50; i++ {
		sites = append(sites, mkSite(w, fmt.Sprintf("Render%d", i), "id", 10+i, 24, idformat.HTMLID))
	}

	result, err := Group(context.Background(), sites, Options{})
	require.NoError(t, err)
	b, _ := result.Bucket(w.Key())

	seen := make(map[string]string)
	for _, binding := range b.Bindings() {
		require.Regexp(t, idformat.Pattern(idformat.HTMLID), binding.Value)
		if prev, ok := seen[binding.Value]; ok {
			t.Fatalf("%s and %s both rendered %q", prev, binding.Name(), binding.Value)
		}
		seen[binding.Value] = binding.Name()
	}
	assert.Len(t, seen, 50)
}

func TestGroupDuplicateIsAnError(t *testing.T) {
	w := declaration("Widget")
	sites := []site.Site{
		mkSite(w, "Render", "id", 12, 20, idformat.Hex16),
		mkSite(w, "Render", "id", 4, 20, idformat.Hex16),
	}

	_, err := Group(context.Background(), sites, Options{})
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, w.Key(), dup.Key)
	assert.Equal(t, 4, dup.First.Coordinates.Line)
	assert.Equal(t, 12, dup.Second.Coordinates.Line)
	assert.Contains(t, dup.Error(), "Render_id_Id")
}

func TestGroupDuplicatesLastWins(t *testing.T) {
	w := declaration("Widget")
	late := mkSite(w, "Render", "id", 12, 20, idformat.Hex16)
	early := mkSite(w, "Render", "id", 4, 20, idformat.Hex16)

	for _, order := range [][]site.Site{{late, early}, {early, late}} {
		result, err := Group(context.Background(), order, Options{Duplicates: DuplicatesLastWins, Workers: 1})
		require.NoError(t, err)
		b, _ := result.Bucket(w.Key())
		require.Len(t, b.Bindings(), 1)
		assert.Equal(t, Identifier(late.Coordinates, idformat.Hex16), b.Bindings()[0].Value)
	}
}

func TestGroupDuplicateWithSameCoordinatesIsOrderIndependent(t *testing.T) {
	w := declaration("Widget")
	hex := mkSite(w, "A", "x", 4, 10, idformat.Hex16)
	short := mkSite(w, "A", "x", 4, 10, idformat.Hex8)

	for _, order := range [][]site.Site{{hex, short}, {short, hex}} {
		result, err := Group(context.Background(), order, Options{Duplicates: DuplicatesLastWins, Workers: 1})
		require.NoError(t, err)
		b, ok := result.Bucket(w.Key())
		require.True(t, ok)
		assert.Equal(t, idformat.Hex8, b.Members["A"]["x"].Site.Format)

		_, err = Group(context.Background(), order, Options{Workers: 1})
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, idformat.Hex16, dup.First.Format)
		assert.Equal(t, idformat.Hex8, dup.Second.Format)
	}
}

func TestGroupKeepsNamespaceAndNestingApart(t *testing.T) {
	nested := decl.Declaration{Chain: []decl.TypeName{{Name: "A"}, {Name: "B"}}}
	namespaced := decl.Declaration{Namespace: "A", Chain: []decl.TypeName{{Name: "B"}}}

	for _, order := range [][]decl.Declaration{{nested, namespaced}, {namespaced, nested}} {
		sites := []site.Site{
			mkSite(order[0], "M", "x", 1, 1, idformat.Hex16),
			mkSite(order[1], "M", "y", 2, 1, idformat.Hex16),
		}
		result, err := Group(context.Background(), sites, Options{Workers: 2})
		require.NoError(t, err)
		require.Equal(t, 2, result.Len())

		b, ok := result.Bucket(nested.Key())
		require.True(t, ok)
		assert.Len(t, b.Declaration.Chain, 2)
		assert.Empty(t, b.Declaration.Namespace)

		b, ok = result.Bucket(namespaced.Key())
		require.True(t, ok)
		assert.Equal(t, "A", b.Declaration.Namespace)
		assert.Len(t, b.Declaration.Chain, 1)
	}
}

func TestGroupSameSiteTwiceIsIdempotent(t *testing.T) {
	w := declaration("Widget")
	s := mkSite(w, "Render", "id", 4, 20, idformat.Hex16)

	result, err := Group(context.Background(), []site.Site{s, s}, Options{})
	require.NoError(t, err)
	b, _ := result.Bucket(w.Key())
	assert.Equal(t, 1, b.Len())
}

func TestGroupMergesStaticAcrossParts(t *testing.T) {
	plain := declaration("Ids")
	static := declaration("Ids")
	static.Chain[0].Static = true

	result, err := Group(context.Background(), []site.Site{
		mkSite(plain, "A", "x", 1, 1, idformat.Hex16),
		mkSite(static, "B", "y", 2, 1, idformat.Hex16),
	}, Options{Workers: 1})
	require.NoError(t, err)
	b, _ := result.Bucket(plain.Key())
	assert.True(t, b.Declaration.Chain[0].Static)
}

func TestGroupRejectsUnknownPolicy(t *testing.T) {
	_, err := Group(context.Background(), nil, Options{Duplicates: "first-wins"})
	assert.Error(t, err)
}

func TestGroupHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Group(ctx, []site.Site{mkSite(declaration("W"), "A", "x", 1, 1, idformat.Hex16)}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
