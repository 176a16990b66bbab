package testgen

import (
	"strconv"
	"strings"
	"testing"
)

func exampleRequest() TestRequest {
	return TestRequest{
		JobDescription:   "Build REST APIs in a backend language",
		CompanyDomain:    "Information Technology (IT) / Software",
		ExperienceLevel:  LevelMid,
		MCQCount:         5,
		IncludeCoding:    true,
		ShortAnswerCount: 2,
	}
}

func TestBuildPrompt_Example(t *testing.T) {
	prompt := BuildPrompt(exampleRequest())

	for _, want := range []string{
		"Provide exactly 5 MCQs",
		"2 Coding Question",
		"Provide exactly 2 questions.",
		"**Coding Challenge**",
		"**4 options** (A, B, C, D)",
		"**1-2 line explanation**",
		"3-5 lines long",
		"Do **not** include the job description again in the output.",
		"Return only the test.",
		"Industry Domain: Information Technology (IT) / Software",
		"Candidate Experience Level: 2-5",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_CodingCountByLevel(t *testing.T) {
	tests := []struct {
		level ExperienceLevel
		want  string
	}{
		{LevelEntry, "1 Coding Question(s)"},
		{LevelMid, "2 Coding Question(s)"},
		{LevelSenior, "2 Coding Question(s)"},
		{"anything else", "2 Coding Question(s)"},
	}
	for _, tt := range tests {
		req := exampleRequest()
		req.ExperienceLevel = tt.level
		prompt := BuildPrompt(req)
		if !strings.Contains(prompt, tt.want) {
			t.Errorf("level %q: prompt missing %q", tt.level, tt.want)
		}
		if CodingQuestionCount(tt.level) == 1 && strings.Contains(prompt, "2 Coding Question") {
			t.Errorf("level %q: prompt asks for 2 coding questions", tt.level)
		}
	}
}

func TestBuildPrompt_NoCodingSection(t *testing.T) {
	req := exampleRequest()
	req.IncludeCoding = false
	prompt := BuildPrompt(req)

	for _, banned := range []string{"Coding Challenge", "Coding Question", "(MCQs, Coding, Short Answers)"} {
		if strings.Contains(prompt, banned) {
			t.Errorf("prompt without coding contains %q", banned)
		}
	}
	if !strings.Contains(prompt, "Include Coding Section: No") {
		t.Error("prompt should state that coding is excluded")
	}
	if !strings.Contains(prompt, "2. **Short Answer Questions**") {
		t.Error("short answers should be renumbered to section 2")
	}
}

func TestBuildPrompt_CountsEmbeddedLiterally(t *testing.T) {
	for _, counts := range [][2]int{{0, 0}, {-3, 7}, {10, 5}, {1000000, -1}} {
		req := exampleRequest()
		req.MCQCount, req.ShortAnswerCount = counts[0], counts[1]

		prompt := BuildPrompt(req)
		if !strings.Contains(prompt, "Number of MCQs: "+strconv.Itoa(counts[0])) {
			t.Errorf("mcq count %d not embedded", counts[0])
		}
		if !strings.Contains(prompt, "Number of Short Answer Questions: "+strconv.Itoa(counts[1])) {
			t.Errorf("short answer count %d not embedded", counts[1])
		}
	}
}

func TestBuildPrompt_Stable(t *testing.T) {
	req := exampleRequest()
	a, b := BuildPrompt(req), BuildPrompt(req)
	if a != b {
		t.Fatal("identical requests produced different prompts")
	}

	req.IncludeCoding = false
	if BuildPrompt(req) == a {
		t.Fatal("different requests produced the same prompt")
	}
}

func TestBuildPrompt_EmbedsJobDescriptionOnce(t *testing.T) {
	req := exampleRequest()
	req.JobDescription = "Own Kafka pipelines & <streaming> jobs"
	prompt := BuildPrompt(req)
	if strings.Count(prompt, req.JobDescription) != 1 {
		t.Errorf("job description embedded %d times", strings.Count(prompt, req.JobDescription))
	}
}
