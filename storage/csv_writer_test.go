package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mslee98/crawl/models"
)

func won(v int64) *int64 { return &v }

func TestResultPath(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 30, 5, 0, time.UTC)

	got := ResultPath("results", "", now)
	assert.Equal(t, filepath.Join("results", "2025-03-01-143005.csv"), got)

	got = ResultPath("results", "apple-sold", now)
	assert.Equal(t, filepath.Join("results", "apple-sold-2025-03-01-143005.csv"), got)
}

func TestCSVWriterWritesBOMHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.csv")

	w, err := NewCSVWriter(path, false)
	require.NoError(t, err)

	records := []*models.ListingRecord{
		{
			Title:    "아이폰 15 프로",
			RawPrice: "1,200,000원",
			Price:    won(1200000),
			Location: "역삼동",
			PostedAt: "3일 전",
			Status:   models.StatusSold,
			Category: "디지털기기",
			URL:      "https://www.daangn.com/kr/buy-sell/u1",
		},
		{
			Title:    "쉼표, 포함 제목",
			RawPrice: "35,000원",
			Status:   models.StatusSoldOut,
			Category: "e쿠폰",
			URL:      "https://www.daangn.com/kr/buy-sell/u2",
		},
	}
	require.NoError(t, w.Write(records))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "file must start with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"title", "price", "location", "time", "status", "category"}, rows[0])
	assert.Equal(t, []string{"아이폰 15 프로", "1,200,000원", "역삼동", "3일 전", "거래완료", "디지털기기"}, rows[1])
	assert.Equal(t, "쉼표, 포함 제목", rows[2][0])
	assert.Equal(t, "판매완료", rows[2][4])
}

func TestCSVWriterExtendedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")

	w, err := NewCSVWriter(path, true)
	require.NoError(t, err)

	records := []*models.ListingRecord{
		{
			Title:          "아이폰 15 프로",
			RawPrice:       "1,200,000원",
			Status:         models.StatusSold,
			Category:       "디지털기기",
			URL:            "https://www.daangn.com/kr/buy-sell/u1",
			SellerNickname: "당근이",
			MannerTemp:     "37.5°C",
			Description:    "풀박스, 기스 없음",
			ImageCount:     5,
			ChatCount:      3,
			InterestCount:  12,
			ViewCount:      250,
		},
	}
	require.NoError(t, w.Write(records))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, "seller_nickname", header[6])
	assert.Equal(t, "url", header[len(header)-1])

	row := rows[1]
	assert.Equal(t, "당근이", row[6])
	assert.Equal(t, "5", row[7])
	assert.Equal(t, "3", row[8])
	assert.Equal(t, "12", row[9])
	assert.Equal(t, "250", row[10])
	assert.Equal(t, "37.5°C", row[11])
	assert.Equal(t, "풀박스, 기스 없음", row[12])
	assert.Equal(t, "https://www.daangn.com/kr/buy-sell/u1", row[13])
}

func TestCSVWriterEmptyWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")

	w, err := NewCSVWriter(path, false)
	require.NoError(t, err)
	require.NoError(t, w.Write(nil))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
