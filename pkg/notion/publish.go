package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/pipeline"
)

// PublishRates upserts one page per borough rate into the target
// database. Pages are matched on the Borough title: an existing page is
// updated in place so the database holds exactly one row per borough.
func PublishRates(ctx context.Context, c Client, dbID string, result *pipeline.Result) error {
	if dbID == "" {
		return eris.New("notion: no rates database configured")
	}

	existing, err := QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return err
	}
	byTitle := make(map[string]string, len(existing))
	for _, page := range existing {
		if title := pageTitle(page); title != "" {
			byTitle[title] = string(page.ID)
		}
	}

	var created, updated int
	for _, r := range result.Rates {
		props := rateProperties(result, r.Borough.String(), r.Count, r.Population, r.RatePer100k)

		if pageID, ok := byTitle[r.Borough.String()]; ok {
			if _, err := c.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
				return eris.Wrapf(err, "notion: update rate page for %s", r.Borough)
			}
			updated++
			continue
		}

		_, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: props,
		})
		if err != nil {
			return eris.Wrapf(err, "notion: create rate page for %s", r.Borough)
		}
		created++
	}

	zap.L().Info("notion: rates published",
		zap.String("run_id", result.RunID),
		zap.Int("created", created),
		zap.Int("updated", updated),
	)
	return nil
}

func rateProperties(result *pipeline.Result, borough string, count int, population int64, rate float64) notionapi.Properties {
	generated := notionapi.Date(result.GeneratedAt)
	return notionapi.Properties{
		"Borough": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: borough}},
			},
		},
		"Incidents":  notionapi.NumberProperty{Number: float64(count)},
		"Population": notionapi.NumberProperty{Number: float64(population)},
		"Rate per 100k": notionapi.NumberProperty{
			Number: rate,
		},
		"Run": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: result.RunID}},
			},
		},
		"Updated": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &generated},
		},
	}
}

// pageTitle concatenates the plain text of a page's Borough title.
func pageTitle(page notionapi.Page) string {
	prop, ok := page.Properties["Borough"]
	if !ok {
		return ""
	}
	tp, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	var title string
	for _, rt := range tp.Title {
		title += rt.PlainText
	}
	return strings.TrimSpace(title)
}
