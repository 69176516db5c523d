package expansion

import (
	"reflect"
	"testing"
)

func TestParseQueries(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		k     int
		want  []string
	}{
		{
			name:  "plain lines",
			reply: "Senior Go backend engineer\nKafka streaming experience",
			k:     4,
			want:  []string{"Senior Go backend engineer", "Kafka streaming experience"},
		},
		{
			name:  "mixed numbering and bullets",
			reply: "1. Senior Go backend engineer\n2) Kafka streaming experience\n(3) Fintech domain\n- Strong communicator",
			k:     4,
			want: []string{
				"Senior Go backend engineer", "Kafka streaming experience",
				"Fintech domain", "Strong communicator",
			},
		},
		{
			name:  "blank lines and extra whitespace",
			reply: "\n\n   Go    engineer   \n\n\t Kafka \n",
			k:     4,
			want:  []string{"Go engineer", "Kafka"},
		},
		{
			name:  "preamble skipped",
			reply: "Here are the search queries:\n\nGo engineer\nKafka",
			k:     4,
			want:  []string{"Go engineer", "Kafka"},
		},
		{
			name:  "labels and emphasis",
			reply: "**Query 1:** Go engineer\nQuery 2: Kafka\n3. **\"Distributed systems\"**\n* `Team lead`",
			k:     4,
			want:  []string{"Go engineer", "Kafka", "Distributed systems", "Team lead"},
		},
		{
			name:  "leading number kept when it is content",
			reply: "5 years of Python\n10. Django REST",
			k:     4,
			want:  []string{"5 years of Python", "Django REST"},
		},
		{
			name:  "case-insensitive dedupe",
			reply: "Go engineer\ngo  ENGINEER\nKafka",
			k:     4,
			want:  []string{"Go engineer", "Kafka"},
		},
		{
			name:  "capped at k",
			reply: "a1\na2\na3\na4\na5\na6",
			k:     4,
			want:  []string{"a1", "a2", "a3", "a4"},
		},
		{
			name:  "windows line endings",
			reply: "Go engineer\r\nKafka\r\n",
			k:     4,
			want:  []string{"Go engineer", "Kafka"},
		},
		{
			name:  "code fences ignored",
			reply: "```\nGo engineer\n```",
			k:     4,
			want:  []string{"Go engineer"},
		},
		{
			name:  "only whitespace",
			reply: " \n\t\n",
			k:     4,
			want:  nil,
		},
		{
			name:  "only a preamble",
			reply: "Queries:",
			k:     4,
			want:  nil,
		},
		{
			name:  "unmatched quotes stripped",
			reply: "\"Senior Go engineer\n'Kafka streaming\nFintech payments”",
			k:     4,
			want:  []string{"Senior Go engineer", "Kafka streaming", "Fintech payments"},
		},
		{
			name:  "punctuation-only lines dropped",
			reply: "\"\n...\n- -\n«»\nGo engineer",
			k:     4,
			want:  []string{"Go engineer"},
		},
		{
			name:  "lone quote",
			reply: "\"",
			k:     4,
			want:  nil,
		},
		{
			name:  "preamble with quoted queries",
			reply: "Queries:\n1. \"Go engineer\"\n2. \"Kafka",
			k:     4,
			want:  []string{"Go engineer", "Kafka"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := parseQueries(tc.reply, tc.k)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("parseQueries() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTrimQuotes(t *testing.T) {
	tests := map[string]string{
		`"Go"`: "Go",
		`'Go'`: "Go",
		"“Go”": "Go",
		"«Go»": "Go",
		`"Go`:  "Go",
		`Go'`:  "Go",
		"„Go“": "Go",
		`"`:    "",
	}
	for in, want := range tests {
		if got := trimQuotes(in); got != want {
			t.Errorf("trimQuotes(%q) = %q, want %q", in, got, want)
		}
	}
}
