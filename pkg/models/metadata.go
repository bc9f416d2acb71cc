package models

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// MatchIDKey is the details label that always carries the match identifier
const MatchIDKey = "MatchID"

var (
	replacementKeyRegex = regexp.MustCompile(`.*Replacement$`)
	columnPunctRegex    = regexp.MustCompile(`[ ()]`)
	columnUnderRegex    = regexp.MustCompile(`_+`)
)

// MatchMetadata holds the facts scraped from a match details panel
type MatchMetadata struct {
	MatchID            int64             `db:"match_id" json:"matchid"`
	Details            map[string]string `db:"-" json:"details"`
	HasSuperOver       bool              `db:"has_super_over" json:"has_super_over"`
	SuperOverCount     int               `db:"super_over_count" json:"super_over_count"`
	FirstInnings       *string           `db:"first_innings" json:"first_innings"`
	SecondInnings      *string           `db:"second_innings" json:"second_innings"`
	PlayerReplacements string            `db:"player_replacements" json:"player_replacements"`
}

// NewMatchMetadata builds metadata from an extracted label/value mapping, moving every
// "...Replacement" label into the serialized PlayerReplacements object.
func NewMatchMetadata(matchID int64, details map[string]string) (*MatchMetadata, error) {
	rest, replacements := SplitReplacements(details)

	encoded, err := sonic.ConfigStd.MarshalToString(replacements)
	if err != nil {
		return nil, errors.Wrapf(err, "encode player replacements for match %d", matchID)
	}

	return &MatchMetadata{
		MatchID:            matchID,
		Details:            rest,
		PlayerReplacements: encoded,
	}, nil
}

// SplitReplacements separates replacement labels from the rest of the details.
// The input map is left untouched.
func SplitReplacements(details map[string]string) (map[string]string, map[string]string) {
	rest := make(map[string]string, len(details))
	replacements := make(map[string]string)
	for k, v := range details {
		if replacementKeyRegex.MatchString(k) {
			replacements[k] = v
			continue
		}
		rest[k] = v
	}
	return rest, replacements
}

// ApplyInnings records super over counts and the first two regular innings
func (m *MatchMetadata) ApplyInnings(plan InningsPlan) {
	m.HasSuperOver = len(plan.SuperOvers) > 0
	m.SuperOverCount = len(plan.SuperOvers)
	m.FirstInnings = nil
	m.SecondInnings = nil

	if len(plan.Regular) >= 1 {
		first := plan.Regular[0]
		m.FirstInnings = &first
	}
	if len(plan.Regular) >= 2 {
		second := plan.Regular[1]
		m.SecondInnings = &second
	}
}

// DetailsJSON serializes the details mapping with sorted keys
func (m *MatchMetadata) DetailsJSON() (string, error) {
	out, err := sonic.ConfigStd.MarshalToString(m.Details)
	if err != nil {
		return "", errors.Wrapf(err, "encode details for match %d", m.MatchID)
	}
	return out, nil
}

// Flatten returns one flat row keyed by normalized column names
func (m *MatchMetadata) Flatten() map[string]any {
	row := make(map[string]any, len(m.Details)+6)
	for k, v := range m.Details {
		row[NormalizeColumnName(k)] = v
	}
	row["matchid"] = m.MatchID
	row["has_super_over"] = m.HasSuperOver
	row["super_over_count"] = m.SuperOverCount
	row["first_innings"] = m.FirstInnings
	row["second_innings"] = m.SecondInnings
	row["player_replacements"] = m.PlayerReplacements
	return row
}

// NormalizeColumnName turns a scraped label such as "Player Of The Match" into
// a storage-friendly column name ("player_of_the_match").
func NormalizeColumnName(label string) string {
	name := columnPunctRegex.ReplaceAllString(label, "_")
	name = columnUnderRegex.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	return strings.ToLower(name)
}
