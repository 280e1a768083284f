package site

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/praefixum/praefixum/internal/decl"
	"github.com/praefixum/praefixum/internal/idformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var widget = decl.Declaration{Namespace: "Demo", Chain: []decl.TypeName{{Name: "Widget"}}}

func occurrence(member, param string, line, col int) Occurrence {
	return Occurrence{
		Kind:        KindParameter,
		Annotated:   true,
		Path:        "src/Widget.cs",
		Declaration: widget,
		Member:      member,
		Parameter:   param,
		Line:        line,
		Column:      col,
	}
}

func TestCollectFiltersUnannotatedAndNonParameters(t *testing.T) {
	plain := occurrence("A", "y", 4, 20)
	plain.Annotated = false
	field := occurrence("A", "z", 5, 4)
	field.Kind = KindOther

	src := SliceSource{occurrence("A", "x", 4, 10), plain, field, occurrence("B", "y", 9, 3)}
	sites, err := Collect(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, sites, 2)

	assert.Equal(t, "A_x_Id", sites[0].ConstantName())
	assert.Equal(t, "B_y_Id", sites[1].ConstantName())
	assert.Equal(t, decl.Key("Demo.Widget"), sites[0].Key)
	assert.Equal(t, "src/Widget.cs:A:x:4:10", sites[0].Coordinates.Key())
	assert.Equal(t, idformat.Hex16, sites[0].Format)
}

func TestCollectEmptyFeed(t *testing.T) {
	sites, err := Collect(context.Background(), SliceSource(nil))
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestCollectRejectsMalformedSites(t *testing.T) {
	noOwner := occurrence("A", "x", 1, 1)
	noOwner.Declaration = decl.Declaration{}
	badFormat := occurrence("A", "x", 1, 1)
	badFormat.Format = idformat.Format(12)

	for name, occ := range map[string]Occurrence{
		"owner":     noOwner,
		"member":    occurrence("", "x", 1, 1),
		"parameter": occurrence("A", " ", 1, 1),
		"position":  occurrence("A", "x", -1, 1),
		"format":    badFormat,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Collect(context.Background(), SliceSource{occ})
			var malformed *MalformedError
			require.True(t, errors.As(err, &malformed), "got %v", err)
		})
	}
}

func TestCollectSkipsMalformedUnannotated(t *testing.T) {
	occ := occurrence("", "", -1, -1)
	occ.Annotated = false
	sites, err := Collect(context.Background(), SliceSource{occ})
	require.NoError(t, err)
	assert.Empty(t, sites)
}

type failingSource struct{}

func (failingSource) Occurrences(context.Context) ([]Occurrence, error) {
	return nil, errors.New("boom")
}

func TestCollectWrapsSourceErrors(t *testing.T) {
	_, err := Collect(context.Background(), failingSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestJSONLSource(t *testing.T) {
	feed := strings.Join([]string{
		`# generated by an external analyzer`,
		`{"source_path":"a.cs","owning_declaration":{"namespace":"Demo","chain":[{"name":"Widget"}]},"member_name":"A","parameter_name":"x","line":4,"column":10}`,
		``,
		`{"source_path":"a.cs","owning_declaration":{"chain":[{"name":"Widget","static":true}]},"member_name":"B","parameter_name":"y","line":9,"column":3,"format":"HtmlId"}`,
		`{"source_path":"a.cs","owning_declaration":{"chain":[{"name":"Widget"}]},"member_name":"C","parameter_name":"z","line":12,"column":3,"annotated":false}`,
	}, "\n")

	occurrences, err := NewJSONLSource(strings.NewReader(feed)).Occurrences(context.Background())
	require.NoError(t, err)
	require.Len(t, occurrences, 3)

	assert.True(t, occurrences[0].Annotated)
	assert.Equal(t, KindParameter, occurrences[0].Kind)
	assert.Equal(t, idformat.Hex16, occurrences[0].Format)
	assert.Equal(t, idformat.HTMLID, occurrences[1].Format)
	assert.True(t, occurrences[1].Declaration.Chain[0].Static)
	assert.False(t, occurrences[2].Annotated)

	sites, err := Collect(context.Background(), NewJSONLSource(strings.NewReader(feed)))
	require.NoError(t, err)
	assert.Len(t, sites, 2)
}

func TestJSONLSourceReportsLine(t *testing.T) {
	_, err := NewJSONLSource(strings.NewReader("{}\n{not json")).Occurrences(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed line 2")
}
