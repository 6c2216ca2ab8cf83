package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mslee98/crawl/utils"
)

// TitleClass is the brand and category hierarchy extracted from one
// listing title.
type TitleClass struct {
	Brand         string `json:"brand"`
	CategoryLarge string `json:"category_large"`
	CategoryMid   string `json:"category_mid"`
	CategorySmall string `json:"category_small"`
}

// Path renders the hierarchy as a " > " joined string, brand first,
// skipping blank levels and values that already appeared.
func (c TitleClass) Path() string {
	parts := make([]string, 0, 4)
	if brand := strings.TrimSpace(c.Brand); brand != "" {
		parts = append(parts, brand)
	}
	for _, v := range []string{c.CategoryLarge, c.CategoryMid, c.CategorySmall} {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		seen := false
		for _, p := range parts {
			if p == v {
				seen = true
				break
			}
		}
		if !seen {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " > ")
}

// Config controls batching and retry behavior for a classification run.
type Config struct {
	BatchSize  int
	MaxRetries int
}

const (
	defaultBatchSize  = 5
	defaultMaxRetries = 2
)

const systemPrompt = `당신은 중고 거래 상품 제목을 보고 브랜드와 카테고리를 추출하는 전문가입니다.
규칙:
- 브랜드: 상품에 명시된 브랜드명만 추출. 없으면 빈 문자열 "".
- 대분류: 가전/전자, 의류/패션, 가방/잡화, 화장품, 식품, 스포츠, 도서/문구, 완구/피규어, 기타 등 넓은 범주.
- 중분류: 노트북, 가방, 운동화, 맨투맨, 스킨케어 등 세부 유형.
- 소분류: 15인치, 미니, 블랙, 32인치 등 스펙/세부 속성. 없으면 "".

예시:
- "샤넬 자개 로고 펄핑크 동그리 백" → brand: "샤넬", 대: "가방/잡화", 중: "가방", 소: "자개 로고"
- "맥북에어15" → brand: "애플", 대: "가전/전자", 중: "노트북", 소: "맥북에어 15인치"
- "블랙 조거 팬츠" → brand: "", 대: "의류/패션", 중: "바지", 소: "조거"

반드시 각 상품마다 한 줄씩, 아래 JSON 형식만 출력하세요. 설명 없이 JSON만.
{"brand":"...", "category_large":"...", "category_mid":"...", "category_small":"..."}
`

const userPromptTemplate = `다음 중고 상품 제목들에서 브랜드와 카테고리(대/중/소)를 추출해주세요.
각 제목마다 한 줄의 JSON으로 출력해주세요. 총 %d개입니다.

제목 목록:
%s
`

// Classifier batches listing titles through an LLM and parses the
// per-line JSON replies into TitleClass values.
type Classifier struct {
	client     Client
	cfg        Config
	logger     *utils.Logger
	retryDelay time.Duration
}

func NewClassifier(client Client, cfg Config, logger *utils.Logger) *Classifier {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Classifier{client: client, cfg: cfg, logger: logger, retryDelay: time.Second}
}

// ClassifyTitles returns exactly one TitleClass per input title, in
// input order. Batches whose titles are all blank are zero-filled
// without an API call, and a batch that still fails after retries is
// zero-filled instead of aborting the run.
func (c *Classifier) ClassifyTitles(ctx context.Context, titles []string) ([]TitleClass, error) {
	total := len(titles)
	out := make([]TitleClass, 0, total)
	c.logger.Info("[classify] Classifying %d titles (batch size %d)", total, c.cfg.BatchSize)

	for start := 0; start < total; start += c.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end := start + c.cfg.BatchSize
		if end > total {
			end = total
		}
		batch := titles[start:end]

		if allBlank(batch) {
			out = append(out, make([]TitleClass, len(batch))...)
			continue
		}

		classes, err := c.classifyBatch(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			c.logger.Warn("[classify] Batch %d-%d failed, filling empty: %v", start+1, end, err)
			classes = make([]TitleClass, len(batch))
		}
		out = append(out, classes...)
		c.logger.Info("[classify] Progress: %d/%d", end, total)
	}
	return out, nil
}

func (c *Classifier) classifyBatch(ctx context.Context, titles []string) ([]TitleClass, error) {
	var numbered strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, t)
	}
	user := fmt.Sprintf(userPromptTemplate, len(titles), strings.TrimRight(numbered.String(), "\n"))

	retry := utils.RetryConfig{
		MaxAttempts: c.cfg.MaxRetries,
		BaseDelay:   c.retryDelay,
		Logger:      c.logger,
	}

	var classes []TitleClass
	err := retry.Do(ctx, "classify-batch", func() error {
		text, err := c.client.CreateMessage(ctx, systemPrompt, user)
		if err != nil {
			return err
		}
		classes = parseClasses(text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The model can come up short or ramble past the list. Pad with
	// empty classes and trim extras so positions stay aligned.
	for len(classes) < len(titles) {
		classes = append(classes, TitleClass{})
	}
	return classes[:len(titles)], nil
}

var jsonObjectRegexp = regexp.MustCompile(`\{[^{}]*\}`)

// parseClasses pulls one JSON object per reply line, tolerating prose,
// numbering, and markdown fences around them.
func parseClasses(text string) []TitleClass {
	var out []TitleClass
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.Contains(line, "```") {
			continue
		}
		match := jsonObjectRegexp.FindString(line)
		if match == "" {
			continue
		}
		var tc TitleClass
		if err := json.Unmarshal([]byte(match), &tc); err != nil {
			continue
		}
		out = append(out, tc)
	}
	return out
}

func allBlank(titles []string) bool {
	for _, t := range titles {
		if strings.TrimSpace(t) != "" {
			return false
		}
	}
	return true
}
