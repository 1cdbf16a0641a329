// Package review posts verification mismatches that could not be
// auto-fixed onto a Notion board for manual inspection.
package review

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eunjilab/saju-admin/internal/verify"
	"github.com/eunjilab/saju-admin/pkg/notion"
)

// Queue writes one review card per order onto a Notion database.
type Queue struct {
	client notion.Client
	dbID   string
}

// NewQueue creates a review queue backed by the given Notion database.
func NewQueue(client notion.Client, dbID string) *Queue {
	return &Queue{client: client, dbID: dbID}
}

// QueueMismatches creates a review card for the order's unresolved
// mismatches. Orders that already have a card are skipped so repeated
// runs do not flood the board.
func (q *Queue) QueueMismatches(ctx context.Context, orderCode string, mismatches []verify.Mismatch) error {
	pending := make([]verify.Mismatch, 0, len(mismatches))
	for _, m := range mismatches {
		if m.Kind == verify.KindMarkerSurplus {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	exists, err := q.hasCard(ctx, orderCode)
	if err != nil {
		return err
	}
	if exists {
		zap.L().Debug("review card already exists", zap.String("orderCode", orderCode))
		return nil
	}

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(q.dbID),
		},
		Properties: buildCardProperties(orderCode, pending),
	}
	if _, err := q.client.CreatePage(ctx, req); err != nil {
		return eris.Wrapf(err, "review: create card for %s", orderCode)
	}
	zap.L().Info("queued review card",
		zap.String("orderCode", orderCode),
		zap.Int("mismatches", len(pending)))
	return nil
}

// hasCard checks whether a card with this order code is already on the board.
func (q *Queue) hasCard(ctx context.Context, orderCode string) (bool, error) {
	page, err := q.client.FindPage(ctx, q.dbID, notionapi.PropertyFilter{
		Property: "Order",
		RichText: &notionapi.TextFilterCondition{Equals: orderCode},
	})
	if err != nil {
		return false, eris.Wrapf(err, "review: lookup card for %s", orderCode)
	}
	return page != nil, nil
}

func buildCardProperties(orderCode string, mismatches []verify.Mismatch) notionapi.Properties {
	lines := make([]string, 0, len(mismatches))
	for _, m := range mismatches {
		lines = append(lines, m.Message)
	}

	return notionapi.Properties{
		"Order": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: orderCode}},
			},
		},
		"Mismatches": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: strings.Join(lines, "\n")}},
			},
		},
		"Count": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(len(mismatches)),
		},
		"Status": notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: "검수 대기"},
		},
	}
}
