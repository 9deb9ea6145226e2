package domain

import "testing"

func TestGeneratedContent_Publishable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status ContentStatus
		want   bool
	}{
		{ContentStatusDraft, true},
		{ContentStatusFailed, true},
		{ContentStatusPosted, false},
	}

	for _, tc := range cases {
		c := &GeneratedContent{Status: tc.status}
		if got := c.Publishable(); got != tc.want {
			t.Errorf("Publishable() with status %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestContentEnums(t *testing.T) {
	t.Parallel()

	if !ContentKindEmail.IsValid() || !ContentKindSocialPost.IsValid() {
		t.Error("known kinds should be valid")
	}
	if ContentKind("tweetstorm").IsValid() {
		t.Error("unknown kind should be invalid")
	}
	if !ContentStatusDraft.IsValid() || ContentStatus("queued").IsValid() {
		t.Error("status validity broken")
	}
	if !SocialPlatformLinkedIn.IsValid() || SocialPlatform("myspace").IsValid() {
		t.Error("platform validity broken")
	}
}
