package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/eunjilab/saju-admin/internal/model"
)

// Sentinel literals used to detect section completion.
const (
	endingCloseTag  = "<!-- /마무리멘트 -->"
	sectionDoneTag  = "<!-- 섹션완료 -->"
	sectionDivider  = "---"
	completionWindow = 100
)

// continuePrompt asks the model to resume a truncated section in place.
const continuePrompt = `이전 내용에 바로 이어서 계속 작성해주세요. 내용을 반복하지 말고, 중단된 지점부터 자연스럽게 이어가세요. 섹션이 끝나면 --- 구분선으로 마무리해주세요.`

const commonRules = `
## 🔴 절대 규칙

### 1. 계산 금지!
- 대운, 세운, 인연수, 배우자상, 신살 등 **모든 계산은 이미 완료되어 제공됩니다**
- 제공된 "사주 계산 결과"와 "인연상 계산 결과"를 **그대로** 사용하세요

### 2. 직접적인 표현 필수
❌ 나쁜 예시: "건강에 주의가 필요한 시기예요."
✅ 좋은 예시: "8월에 심장이랑 혈압 조심하세요. 화(火) 기운이 과해져서 그래요."

### 3. 해석 공식
[언제] + [뭐가 문제인지 직접] + [왜: 사주 근거] + [어떻게 피하는지]

### 4. 특수 태그 사용 (필수!)
<!-- 소름 -->정확한 내용<!-- /소름 -->
<!-- 왜그런지 -->사주 근거<!-- /왜그런지 -->
<!-- 주의 -->주의점<!-- /주의 -->
<!-- 조언 -->해결책<!-- /조언 -->
<!-- 강점 -->장점<!-- /강점 -->
<!-- 공감 -->공감 내용<!-- /공감 -->
`

// sectionSystemPrompts holds the fixed instruction set per section.
var sectionSystemPrompts = map[string]string{
	"intro": `당신은 전문 사주 명리학 상담사입니다.
` + commonRules + `
## 이번 섹션: 표지 + 기본정보

작성할 내용:
1. 표지 (고객명, 생년월일시, 올해 핵심 키워드)
2. 사주 명식 표 (연주/월주/일주/시주)
3. 일간 분석 (자연물 비유, 핵심 성향)

⚠️ 자세하고 풍부하게 작성하세요. 최소 1500자 이상.`,

	"oheng": `당신은 전문 사주 명리학 상담사입니다.
` + commonRules + `
## 이번 섹션: 오행 + 십성 분석

작성할 내용:
1. 오행 분포 표와 의미
2. 십성 분포 분석
3. 성격 + 심리 패턴

⚠️ 자세하고 풍부하게 작성하세요. 최소 2000자 이상.`,

	"sinsal": `당신은 전문 사주 명리학 상담사입니다.
` + commonRules + `
## 이번 섹션: 신살 + 격국 분석

작성할 내용:
1. 신살 분석 (계산 결과에 있는 것만!)
2. 격국 분석
3. 용신/기신 설명
4. 대운 흐름

⚠️ 자세하고 풍부하게 작성하세요. 최소 2000자 이상.`,

	"yearly": `당신은 전문 사주 명리학 상담사입니다.
` + commonRules + `
## 이번 섹션: 올해 운세 (월별 상세)

작성할 내용:
1. 올해 세운 개요
2. 분기별 운세 표
3. 월별 상세 운세 (12개월 전부!)

⚠️ 12개월 모두 빠짐없이 작성하세요! 최소 3000자 이상.`,

	"category": `당신은 전문 사주 명리학 상담사입니다.
` + commonRules + `
## 이번 섹션: 분야별 운세

작성할 내용:
1. 연애/결혼운
2. 직업/진로운
3. 재물운
4. 건강운

⚠️ 각 분야별로 자세하게 작성하세요. 최소 2500자 이상.`,

	"inyeon": `당신은 전문 사주 명리학 상담사입니다.
` + commonRules + `
## 이번 섹션: 인연상 + 배우자상 (프리미엄)

⚠️ 인연상 계산 결과를 **그대로** 사용하세요!

작성할 내용:
1. 인연수 분석
2. 배우자 외모/성격
3. 만남 시기와 장소
4. 인연 팁

⚠️ 자세하고 풍부하게 작성하세요. 최소 2000자 이상.`,

	"ending": `당신은 전문 사주 명리학 상담사입니다.
` + commonRules + `
## 이번 섹션: 맞춤 질문 답변 + 마무리

작성할 내용:
1. 맞춤 질문 답변 (모두 빠짐없이!)
2. 행운 포인트
3. 마무리 메시지 (<!-- 마무리멘트 --> 태그 사용, <!-- /마무리멘트 -->로 닫기)

⚠️ 모든 질문에 빠짐없이 답변하세요. 최소 2000자 이상.`,
}

// modifySystemPrompt drives the synchronous modify action.
const modifySystemPrompt = `당신은 전문 사주 명리학 상담사입니다. 기존 보고서를 사용자의 요청에 따라 수정합니다.
⚠️ 계산 결과(대운, 인연상, 신살 등)는 절대 변경하지 마세요. 이미 계산된 값을 그대로 사용하세요.`

// reviewSystemPrompt drives the synchronous review action.
const reviewSystemPrompt = `당신은 사주 보고서 검토 전문가입니다.

## 검토 항목

### 1. 계산 일치 확인
- 보고서의 대운, 세운, 신살이 원본 계산 데이터와 일치하는가?
- 인연수/배우자상 점수가 원본과 일치하는가?

### 2. 작성 규칙 준수
- 직접적인 표현을 사용했는가?
- 사주 근거를 포함했는가?
- 구체적 해결법을 제시했는가?

### 3. 누락 확인
- 맞춤 질문을 모두 답변했는가?
- 필수 섹션이 모두 있는가?

## 출력 형식
### 검토 결과

#### ✅ 정상
#### ⚠️ 수정 필요
#### 🔴 계산 오류`

// systemPromptFor returns the fixed instruction set for a section,
// falling back to the intro prompt for unknown IDs.
func systemPromptFor(sectionID string) string {
	if p, ok := sectionSystemPrompts[sectionID]; ok {
		return p
	}
	return sectionSystemPrompts["intro"]
}

// buildUserPrompt assembles the per-section user message: customer fields,
// the ground-truth calculation blob, section-conditional extras, and the
// running summary of prior sections.
func buildUserPrompt(c model.Customer, section model.SectionSpec, previousSummary, promptOverride string) string {
	var b strings.Builder

	// The override wins over the customer's stored blob. Verification
	// uses the same precedence, so the document is always checked
	// against the blob it was generated from.
	sajuResult := promptOverride
	if sajuResult == "" {
		sajuResult = c.SajuResult
	}
	if sajuResult == "" {
		sajuResult = "(사주 계산 결과 없음)"
	}

	fmt.Fprintf(&b, `## 고객 정보
- 이름: %s
- 생년월일: %d년 %d월 %d일
- 태어난 시간: %s
- 성별: %s
- 패키지: %s

---

## 🔴 사주 계산 결과 (이 값을 그대로 사용!)
%s

---`,
		c.Name, c.BirthYear, c.BirthMonth, c.BirthDay,
		c.BirthHourLabel(), c.GenderLabel(), c.Package.Label(),
		sajuResult,
	)

	if section.ID == "inyeon" && c.InyeonResult != "" {
		fmt.Fprintf(&b, `

## 🔴 인연상 계산 결과 (이 값을 그대로 사용!)
%s

---`, c.InyeonResult)
	}

	if section.ID == "ending" {
		fmt.Fprintf(&b, `

## 고객 질문/고민 (모두 답변 필수!)

### 😭 가장 큰 고민
%s

### 🔁 반복되는 패턴
%s

### 선택 질문
%s

### 연애 상태
%s

### 직업 상태
%s

### ✨ 프리미엄 맞춤질문
%s

---`,
			orNone(c.MainConcern), orNone(c.RepeatPattern), orNone(c.Questions),
			orNone(c.LoveStatus), orNone(c.JobStatus), orNone(c.CustomQuestion),
		)
	}

	if previousSummary != "" {
		fmt.Fprintf(&b, `

## 이전 섹션 요약 (일관성 유지용)
%s

---`, previousSummary)
	}

	fmt.Fprintf(&b, `

위 정보를 바탕으로 **%s** 섹션을 마크다운 형식으로 작성해주세요.

⚠️ 계산 결과는 절대 변경하지 말고 그대로 사용하세요!`, section.Name)

	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "없음"
	}
	return s
}

// metaBlock renders the fixed-format comment header prepended to the
// assembled document.
func metaBlock(c model.Customer, now time.Time) string {
	return fmt.Sprintf(`<!-- META
이름: %s
생년월일: %d년 %d월 %d일
시간: %s
성별: %s
패키지: %s
총 페이지: %d
생성일시: %s
-->`,
		c.Name, c.BirthYear, c.BirthMonth, c.BirthDay,
		c.BirthHourLabel(), c.GenderLabel(), c.Package.Label(),
		c.Package.TotalPages(), now.UTC().Format(time.RFC3339),
	)
}
