package classify

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTitledCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	content := "﻿Title,price\n아이폰 13,350000\n 맥북 ,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	in, err := ReadTitledCSV(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"Title", "price"}, in.Header)
	assert.Equal(t, 0, in.TitleCol)
	assert.Equal(t, []string{"아이폰 13", "맥북"}, in.Titles())
}

func TestReadTitledCSVNoTitleColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	require.NoError(t, os.WriteFile(path, []byte("price,location\n1000,서울\n"), 0o644))

	_, err := ReadTitledCSV(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no title column")
}

func TestReadTitledCSVEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ReadTitledCSV(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestWriteClassifiedCSV(t *testing.T) {
	in := &TitledCSV{
		Header: []string{"title", "price"},
		Rows: [][]string{
			{"맥북에어15", "1200000"},
			{"블랙 조거 팬츠", ""},
			{"제목만"},
		},
		TitleCol: 0,
	}
	classes := []TitleClass{
		{Brand: "애플", CategoryLarge: "가전/전자", CategoryMid: "노트북", CategorySmall: "15인치"},
		{CategoryLarge: "의류/패션", CategoryMid: "바지", CategorySmall: "조거"},
		{},
	}

	path := filepath.Join(t.TempDir(), "result_classified.csv")
	require.NoError(t, WriteClassifiedCSV(path, in, classes))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "output must start with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"title", "price", "brand", "category_large", "category_mid", "category_small", "category_path"}, rows[0])
	assert.Equal(t, []string{"맥북에어15", "1200000", "애플", "가전/전자", "노트북", "15인치", "애플 > 가전/전자 > 노트북 > 15인치"}, rows[1])
	assert.Equal(t, []string{"블랙 조거 팬츠", "", "", "의류/패션", "바지", "조거", "의류/패션 > 바지 > 조거"}, rows[2])
	assert.Equal(t, []string{"제목만", "", "", "", "", "", ""}, rows[3])
}

func TestWriteClassifiedCSVLengthMismatch(t *testing.T) {
	in := &TitledCSV{Header: []string{"title"}, Rows: [][]string{{"아이폰"}}, TitleCol: 0}

	err := WriteClassifiedCSV(filepath.Join(t.TempDir(), "out.csv"), in, nil)

	require.Error(t, err)
}
