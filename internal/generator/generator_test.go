package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/emit"
	"github.com/praefixum/praefixum/internal/group"
	"github.com/praefixum/praefixum/internal/idformat"
	"github.com/praefixum/praefixum/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	widget = decl.Declaration{Namespace: "Demo", Chain: []decl.TypeName{{Name: "Widget"}}}
	gadget = decl.Declaration{Namespace: "Demo", Chain: []decl.TypeName{{Name: "Gadget", Static: true}}}
)

func occ(d decl.Declaration, member, param string, line, col int, f idformat.Format) site.Occurrence {
	return site.Occurrence{
		Kind:        site.KindParameter,
		Annotated:   true,
		Path:        "src/Widget.cs",
		Declaration: d,
		Member:      member,
		Parameter:   param,
		Line:        line,
		Column:      col,
		Format:      f,
	}
}

type countingSink struct {
	calls int
	err   error
}

func (s *countingSink) Accept(ctx context.Context, name, text string) error {
	s.calls++
	return s.err
}

func TestRunEmitsOneUnitPerDeclaration(t *testing.T) {
	src := site.SliceSource{
		occ(widget, "B", "y", 9, 3, idformat.Hex16),
		occ(widget, "A", "x", 4, 10, idformat.Hex16),
		occ(gadget, "Make", "tag", 20, 8, idformat.HTMLID),
	}
	sink := &emit.MemorySink{}

	report, err := Run(context.Background(), src, sink, Options{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Sites)
	assert.Equal(t, []string{"Demo.Gadget_UniqueIds", "Demo.Widget_UniqueIds"}, report.Units)
	require.Len(t, sink.Units, 2)

	unit, ok := sink.Lookup("Demo.Widget_UniqueIds")
	require.True(t, ok)
	assert.Contains(t, unit.Text, `public const string A_x_Id = "bb62d830328be114";`)
	assert.Contains(t, unit.Text, `public const string B_y_Id = "5c2680450c93a485";`)

	unit, ok = sink.Lookup("Demo.Gadget_UniqueIds")
	require.True(t, ok)
	assert.Contains(t, unit.Text, "static partial class Gadget")
	assert.Regexp(t, `Make_tag_Id = "[a-z][a-z0-9_-]{5}";`, unit.Text)
}

func TestRunWithoutAnnotatedSitesNeverTouchesSink(t *testing.T) {
	unannotated := occ(widget, "A", "x", 4, 10, idformat.Hex16)
	unannotated.Annotated = false
	sink := &countingSink{}

	for _, src := range []site.SliceSource{nil, {unannotated}} {
		report, err := Run(context.Background(), src, sink, Options{})
		require.NoError(t, err)
		assert.Zero(t, report.Sites)
		assert.Empty(t, report.Units)
	}
	assert.Zero(t, sink.calls)
}

func TestRunDuplicateAbortsBeforeEmitting(t *testing.T) {
	src := site.SliceSource{
		occ(widget, "A", "x", 4, 10, idformat.Hex16),
		occ(widget, "A", "x", 12, 10, idformat.Hex16),
		occ(gadget, "Make", "tag", 20, 8, idformat.Hex16),
	}
	sink := &countingSink{}

	_, err := Run(context.Background(), src, sink, Options{})
	var dup *group.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "A", dup.Member)
	assert.Zero(t, sink.calls)

	report, err := Run(context.Background(), src, sink, Options{Duplicates: group.DuplicatesLastWins})
	require.NoError(t, err)
	assert.Len(t, report.Units, 2)
}

func TestRunMalformedSiteAborts(t *testing.T) {
	bad := occ(widget, "", "x", 4, 10, idformat.Hex16)
	sink := &countingSink{}

	_, err := Run(context.Background(), site.SliceSource{bad}, sink, Options{})
	var malformed *site.MalformedError
	require.ErrorAs(t, err, &malformed)
	assert.Zero(t, sink.calls)
}

func TestRunPropagatesSinkErrors(t *testing.T) {
	boom := errors.New("disk full")
	sink := &countingSink{err: boom}

	_, err := Run(context.Background(), site.SliceSource{occ(widget, "A", "x", 4, 10, idformat.Hex16)}, sink, Options{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Demo.Widget_UniqueIds")
}

func TestRunIsRepeatable(t *testing.T) {
	src := site.SliceSource{
		occ(widget, "A", "x", 4, 10, idformat.UUID),
		occ(widget, "B", "y", 9, 3, idformat.Hex32),
	}
	first, second := &emit.MemorySink{}, &emit.MemorySink{}

	_, err := Run(context.Background(), src, first, Options{Workers: 1})
	require.NoError(t, err)
	_, err = Run(context.Background(), src, second, Options{Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, first.Units, second.Units)
}
