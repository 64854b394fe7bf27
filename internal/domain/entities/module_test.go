package entities

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to ModuleStatus }{
		{ModuleStatusDraft, ModuleStatusQuestionsGenerated},
		{ModuleStatusQuestionsGenerated, ModuleStatusInProgress},
		{ModuleStatusQuestionsGenerated, ModuleStatusGeneratingChapter},
		{ModuleStatusInProgress, ModuleStatusGeneratingChapter},
		{ModuleStatusGeneratingChapter, ModuleStatusChapterGenerated},
		{ModuleStatusGeneratingChapter, ModuleStatusInProgress},
		{ModuleStatusChapterGenerated, ModuleStatusGeneratingChapter},
		{ModuleStatusChapterGenerated, ModuleStatusApproved},
		{ModuleStatusInProgress, ModuleStatusError},
		{ModuleStatusError, ModuleStatusInProgress},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to ModuleStatus }{
		{ModuleStatusDraft, ModuleStatusChapterGenerated},
		{ModuleStatusDraft, ModuleStatusApproved},
		{ModuleStatusQuestionsGenerated, ModuleStatusApproved},
		{ModuleStatusInProgress, ModuleStatusApproved},
		{ModuleStatusApproved, ModuleStatusInProgress},
		{ModuleStatusApproved, ModuleStatusGeneratingChapter},
		{ModuleStatusChapterGenerated, ModuleStatusDraft},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be denied", tc.from, tc.to)
		}
	}

	// Approved is terminal
	for to := range moduleTransitions {
		if CanTransition(ModuleStatusApproved, to) {
			t.Errorf("approved -> %s should be denied", to)
		}
	}
}

func TestAnsweredThreshold(t *testing.T) {
	cases := []struct{ total, want int }{
		{0, 0},
		{1, 1},
		{2, 1},
		{10, 5},
		{15, 8},
		{16, 8},
	}
	for _, tc := range cases {
		if got := AnsweredThreshold(tc.total); got != tc.want {
			t.Errorf("AnsweredThreshold(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestGenerationForBirthYear(t *testing.T) {
	cases := []struct {
		year int
		want string
	}{
		{1920, "Greatest Generation"},
		{1940, "Silent Generation"},
		{1958, "Baby Boomer"},
		{1975, "Generation X"},
		{1990, "Millennial"},
		{2005, "Generation Z"},
	}
	for _, tc := range cases {
		if got := GenerationForBirthYear(tc.year); got != tc.want {
			t.Errorf("GenerationForBirthYear(%d) = %s, want %s", tc.year, got, tc.want)
		}
	}
}
