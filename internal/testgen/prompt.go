package testgen

import (
	"fmt"
	"strings"
)

// CodingQuestionCount returns how many coding questions a level gets.
func CodingQuestionCount(level ExperienceLevel) int {
	if level == LevelEntry {
		return 1
	}
	return 2
}

// BuildPrompt renders the instruction document for req. It never
// validates: counts are embedded literally, whatever their value.
func BuildPrompt(req TestRequest) string {
	var b strings.Builder

	codingLine := ""
	if req.IncludeCoding {
		codingLine = fmt.Sprintf("%d Coding Question(s) (easy to hard) with problem description and expected sample input/output.",
			CodingQuestionCount(req.ExperienceLevel))
	}

	b.WriteString("Do not include the job description or repeat the inputs in the output.\n\n")
	b.WriteString("You are an expert AI interviewer specializing in technical hiring for software and AI/ML roles.\n\n")

	b.WriteString("Given the following inputs:\n\n")
	fmt.Fprintf(&b, "Job Description: %s\n", req.JobDescription)
	fmt.Fprintf(&b, "Candidate Experience Level: %s\n", req.ExperienceLevel)
	fmt.Fprintf(&b, "Industry Domain: %s\n", req.CompanyDomain)
	fmt.Fprintf(&b, "Number of MCQs: %d\n", req.MCQCount)
	fmt.Fprintf(&b, "Number of Short Answer Questions: %d\n", req.ShortAnswerCount)
	if req.IncludeCoding {
		fmt.Fprintf(&b, "Include Coding Section: %s\n\n", codingLine)
	} else {
		b.WriteString("Include Coding Section: No\n\n")
	}

	b.WriteString("Generate a comprehensive technical interview test as per the following structure:\n\n")

	section := 1
	fmt.Fprintf(&b, "%d. **Multiple Choice Questions (MCQs)**\n", section)
	fmt.Fprintf(&b, "   - Provide exactly %d MCQs relevant to the role.\n", req.MCQCount)
	b.WriteString("   - Each question should have **4 options** (A, B, C, D).\n")
	b.WriteString("   - **Clearly indicate the correct option** and provide a **1-2 line explanation**.\n\n")
	section++

	if req.IncludeCoding {
		fmt.Fprintf(&b, "%d. **Coding Challenge**\n", section)
		fmt.Fprintf(&b, "   - %s\n", codingLine)
		b.WriteString("   - Align each problem with the core skills of the job description.\n")
		b.WriteString("   - Provide a problem description, sample input/output and a brief outline of the expected approach.\n\n")
		section++
	}

	fmt.Fprintf(&b, "%d. **Short Answer Questions**\n", section)
	fmt.Fprintf(&b, "   - Provide exactly %d questions.\n", req.ShortAnswerCount)
	b.WriteString("   - Each answer should be 3-5 lines long, with technically sound and concise explanations.\n\n")

	b.WriteString("**Important Instructions:**\n")
	b.WriteString("- Do **not** include the job description again in the output.\n")
	if req.IncludeCoding {
		b.WriteString("- Structure the output with **clear section headings** (MCQs, Coding, Short Answers).\n")
	} else {
		b.WriteString("- Structure the output with **clear section headings** (MCQs, Short Answers).\n")
	}
	b.WriteString("- Use consistent, structured markdown so each question, option and answer can be located programmatically.\n")
	b.WriteString("- The difficulty and focus should match the candidate's experience level and the domain.\n\n")

	b.WriteString("Return only the test.\n")

	return b.String()
}
