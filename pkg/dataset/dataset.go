// Package dataset renders the store's training and classification
// query results in the formats the downstream learner consumes.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/RavenB/UnitedTweetAnalyzer/internal/store"
)

// WriteTrainingCSV writes labeled rows as CSV. Column order matches
// the training query: lang, location, utc_offset, timezone, country.
// Missing values are empty fields.
func WriteTrainingCSV(w io.Writer, rows []store.TrainingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"lang", "location", "utc_offset", "timezone", "country"}); err != nil {
		return fmt.Errorf("write training header: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Lang, strOrEmpty(r.Location), offsetOrEmpty(r.UTCOffset), r.Timezone, r.Country}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write training row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteClassificationCSV writes the classification view as CSV: id,
// lang, location, utc_offset, timezone, country. Country is empty for
// the unlabeled sample.
func WriteClassificationCSV(w io.Writer, rows []store.ClassificationRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "lang", "location", "utc_offset", "timezone", "country"}); err != nil {
		return fmt.Errorf("write classification header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatInt(r.ID, 10),
			r.Lang,
			strOrEmpty(r.Location),
			offsetOrEmpty(r.UTCOffset),
			r.Timezone,
			strOrEmpty(r.Country),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write classification row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteClassificationARFF writes the classification view as a Weka
// ARFF relation. lang, timezone and the country class are nominal
// with value sets collected from the data; location is a free string
// attribute; utc_offset is numeric. Missing values are "?".
func WriteClassificationARFF(w io.Writer, relation string, rows []store.ClassificationRow) error {
	langs := nominalSet(rows, func(r store.ClassificationRow) (string, bool) { return r.Lang, r.Lang != "" })
	zones := nominalSet(rows, func(r store.ClassificationRow) (string, bool) { return r.Timezone, r.Timezone != "" })
	countries := nominalSet(rows, func(r store.ClassificationRow) (string, bool) {
		if r.Country == nil {
			return "", false
		}
		return *r.Country, true
	})

	var b strings.Builder
	fmt.Fprintf(&b, "@relation %s\n\n", arffQuote(relation))
	b.WriteString("@attribute id numeric\n")
	fmt.Fprintf(&b, "@attribute lang %s\n", arffNominal(langs))
	b.WriteString("@attribute location string\n")
	b.WriteString("@attribute utc_offset numeric\n")
	fmt.Fprintf(&b, "@attribute timezone %s\n", arffNominal(zones))
	fmt.Fprintf(&b, "@attribute country %s\n\n", arffNominal(countries))
	b.WriteString("@data\n")

	for _, r := range rows {
		fields := []string{
			strconv.FormatInt(r.ID, 10),
			arffValue(r.Lang, r.Lang != ""),
			arffValue(strOrEmpty(r.Location), r.Location != nil),
			arffOffset(r.UTCOffset),
			arffValue(r.Timezone, r.Timezone != ""),
			arffValue(strOrEmpty(r.Country), r.Country != nil),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func nominalSet(rows []store.ClassificationRow, get func(store.ClassificationRow) (string, bool)) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		if v, ok := get(r); ok {
			seen[v] = true
		}
	}
	vals := make([]string, 0, len(seen))
	for v := range seen {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}

func arffNominal(vals []string) string {
	if len(vals) == 0 {
		return "string"
	}
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = arffQuote(v)
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// arffQuote single-quotes a value when it contains characters that
// would break ARFF tokenization.
func arffQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t,{}'\"%") {
		return s
	}
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func arffValue(s string, present bool) string {
	if !present {
		return "?"
	}
	return arffQuote(s)
}

func arffOffset(v *int64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatInt(*v, 10)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func offsetOrEmpty(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
