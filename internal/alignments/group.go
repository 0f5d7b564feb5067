package alignments

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tanglisha/text-pair/internal/planner"
	"github.com/tanglisha/text-pair/internal/request"
)

// YearGroup is one year's deduplicated passages, titles descending.
type YearGroup struct {
	Year   int64                    `json:"year"`
	Result []map[string]interface{} `json:"result"`
}

// PassageGroup is the shaped response of one group lookup: the canonical
// passage plus the group's members partitioned by year.
type PassageGroup struct {
	PassageList     []YearGroup            `json:"passageList"`
	OriginalPassage map[string]interface{} `json:"original_passage"`
}

// PassageGroup resolves one passage group. The canonical row comes from the
// groups index; members reduce to one record per distinct title, keeping the
// earliest-year occurrence. The source side of a member only contributes
// when both its author and title differ from the canonical passage's; the
// target side always contributes. Output is partitioned by year ascending
// with titles descending inside each year, so repeated lookups are
// identical.
func (s *Service) PassageGroup(ctx context.Context, table string, groupID int64) (*PassageGroup, error) {
	ctx, span := startSpan(ctx, "alignments.passage_group",
		attribute.String("textpair.table", table),
		attribute.Int64("textpair.group_id", groupID),
	)
	defer span.End()

	canonicalPlan, err := planner.PlanGroupCanonical(table, groupID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	canonicalRows, err := s.queryRows(ctx, "group canonical", canonicalPlan)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if len(canonicalRows) == 0 {
		err := &NotFoundError{Table: table, GroupID: groupID}
		recordSpanError(span, err)
		return nil, err
	}
	canonical := canonicalRows[0]

	membersPlan, err := planner.PlanGroupMembers(table, groupID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	members, err := s.queryRows(ctx, "group members", membersPlan)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	byTitle := make(map[string]map[string]interface{})
	keep := func(entry map[string]interface{}) {
		title := rowString(entry, "title")
		existing, ok := byTitle[title]
		if !ok {
			byTitle[title] = entry
			return
		}
		existingYear, _ := toInt64(existing["year"])
		entryYear, _ := toInt64(entry["year"])
		if entryYear < existingYear {
			byTitle[title] = entry
		}
	}

	for _, row := range members {
		if rowString(row, "source_author") != rowString(canonical, "source_author") &&
			rowString(row, "source_title") != rowString(canonical, "source_title") {
			keep(sideRecord(row, request.SideSource))
		}
		keep(sideRecord(row, request.SideTarget))
	}

	byYear := make(map[int64][]map[string]interface{})
	for _, entry := range byTitle {
		year, _ := toInt64(entry["year"])
		byYear[year] = append(byYear[year], entry)
	}
	years := make([]int64, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })

	group := &PassageGroup{OriginalPassage: canonical, PassageList: []YearGroup{}}
	for _, year := range years {
		entries := byYear[year]
		sort.Slice(entries, func(i, j int) bool {
			return rowString(entries[i], "title") > rowString(entries[j], "title")
		})
		group.PassageList = append(group.PassageList, YearGroup{Year: year, Result: entries})
	}
	return group, nil
}

// sideRecord strips the opposite side's columns from a member row and tags
// the copy with the chosen side's year, title, and direction.
func sideRecord(row map[string]interface{}, side string) map[string]interface{} {
	opposite := request.SideTarget + "_"
	if side == request.SideTarget {
		opposite = request.SideSource + "_"
	}
	record := make(map[string]interface{}, len(row))
	for key, value := range row {
		if strings.HasPrefix(key, opposite) {
			continue
		}
		record[key] = value
	}
	record["year"] = row[side+"_year"]
	record["title"] = row[side+"_title"]
	record["direction"] = side
	return record
}
