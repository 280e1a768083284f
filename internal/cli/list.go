package cli

import (
	"fmt"
	"sort"

	"github.com/praefixum/praefixum/internal/emit"
	"github.com/praefixum/praefixum/internal/fileutil"
	"github.com/praefixum/praefixum/internal/group"
	"github.com/praefixum/praefixum/internal/idformat"
	"github.com/praefixum/praefixum/internal/site"
	"github.com/spf13/cobra"
)

// SiteRecord is one line of `praefixum list` output.
type SiteRecord struct {
	Path        string          `json:"path"`
	Line        int             `json:"line"`
	Column      int             `json:"column"`
	Declaration string          `json:"declaration"`
	Unit        string          `json:"unit"`
	Member      string          `json:"member"`
	Parameter   string          `json:"parameter"`
	Constant    string          `json:"constant"`
	Format      idformat.Format `json:"format"`
	Value       string          `json:"value"`
}

func RunList(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadSettings(cmd, rootPath)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Sync() //nolint:errcheck

	src, err := newScanSource(rootPath, cfg, logger)
	if err != nil {
		return err
	}
	sites, err := site.Collect(cmd.Context(), src)
	if src.Result != nil {
		ReportParseIssues(cmd.ErrOrStderr(), src.Result.Issues)
	}
	if err != nil {
		return fmt.Errorf("failed to collect sites: %w", err)
	}

	records := SiteRecords(sites)
	return fileutil.WriteJSONL(cmd.OutOrStdout(), records)
}

// SiteRecords renders each site's identifier, ordered by location.
func SiteRecords(sites []site.Site) []SiteRecord {
	sorted := append([]site.Site(nil), sites...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Coordinates.Less(sorted[j].Coordinates)
	})

	records := make([]SiteRecord, 0, len(sorted))
	for _, s := range sorted {
		records = append(records, SiteRecord{
			Path:        s.Coordinates.Path,
			Line:        s.Coordinates.Line,
			Column:      s.Coordinates.Column,
			Declaration: string(s.Key),
			Unit:        emit.FileName(s.Declaration.UnitName()),
			Member:      s.Member,
			Parameter:   s.Parameter,
			Constant:    s.ConstantName(),
			Format:      s.Format,
			Value:       group.Identifier(s.Coordinates, s.Format),
		})
	}
	return records
}
