package daangn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mslee98/crawl/config"
	"github.com/mslee98/crawl/models"
	"github.com/mslee98/crawl/utils"
)

type cardPage struct {
	basePage
	cards      []cardData
	extractErr error
}

func (p *cardPage) Extract(ctx context.Context, script string, out any) error {
	if p.extractErr != nil {
		return p.extractErr
	}
	if c, ok := out.(*[]cardData); ok {
		*c = p.cards
	}
	return nil
}

func TestExtractCardsMapsFields(t *testing.T) {
	s := New(&config.Config{}, utils.NewLogger(), nil)
	page := &cardPage{cards: []cardData{
		{
			Title:    "아이폰 15 프로",
			Price:    "1,200,000원",
			Location: "역삼동",
			Time:     "3일 전",
			Status:   "거래완료",
			URL:      "https://www.daangn.com/kr/buy-sell/u1",
			Category: "디지털기기",
		},
		{
			Title:  "상태 없는 매물",
			Price:  "50,000원",
			Status: "",
			URL:    "https://www.daangn.com/kr/buy-sell/u2",
		},
	}}

	records, err := s.extractCards(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "아이폰 15 프로", first.Title)
	assert.Equal(t, "1,200,000원", first.RawPrice)
	assert.Nil(t, first.Price)
	assert.Equal(t, "역삼동", first.Location)
	assert.Equal(t, "3일 전", first.PostedAt)
	assert.Equal(t, models.StatusSold, first.Status)
	assert.Equal(t, "디지털기기", first.Category)
	assert.False(t, first.ScrapedAt.IsZero())

	// A missing badge means the listing is still on sale.
	assert.Equal(t, models.StatusOnSale, records[1].Status)
}

func TestExtractCardsSkipsMissingURL(t *testing.T) {
	s := New(&config.Config{}, utils.NewLogger(), nil)
	page := &cardPage{cards: []cardData{
		{Title: "URL 없음", URL: ""},
		{Title: "URL 있음", URL: "https://www.daangn.com/kr/buy-sell/u1"},
	}}

	records, err := s.extractCards(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "URL 있음", records[0].Title)
}

func TestExtractCardsError(t *testing.T) {
	s := New(&config.Config{}, utils.NewLogger(), nil)
	boom := errors.New("evaluate failed")
	page := &cardPage{extractErr: boom}

	_, err := s.extractCards(context.Background(), page)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
