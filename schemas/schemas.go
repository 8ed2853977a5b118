// Package schemas embeds the JSON Schemas for the configuration file and the analysis report.
package schemas

import "embed"

// Schema file names within FS.
const (
	ScoringConfig = "scoring_config.schema.json"
	RankingTable  = "ranking_table.schema.json"
)

//go:embed *.schema.json
var FS embed.FS
