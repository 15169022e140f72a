package infer

import (
	"testing"

	"run-coach-be/pkg/coach/profile"
)

func TestFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want profile.Patch
	}{
		{
			name: "empty text",
			text: "   ",
			want: profile.Patch{},
		},
		{
			name: "5k time in passing",
			text: "I usually run it in 22:30 or so",
			want: profile.Patch{profile.FieldCurrent5KTime: "00:22:30"},
		},
		{
			name: "hour form time",
			text: "my long run pace got me 1:45:00 on the half",
			want: profile.Patch{profile.FieldCurrent5KTime: "01:45:00"},
		},
		{
			name: "weekly sessions english",
			text: "I do 4 runs most weeks",
			want: profile.Patch{profile.FieldWeeklySessions: 4},
		},
		{
			name: "weekly sessions swedish",
			text: "jag springer 3 pass i veckan",
			want: profile.Patch{profile.FieldWeeklySessions: 3},
		},
		{
			name: "birth year",
			text: "born in 1987, started running late",
			want: profile.Patch{profile.FieldBirthYear: 1987},
		},
		{
			name: "year outside window ignored",
			text: "I ran a race back in 2019",
			want: profile.Patch{},
		},
		{
			name: "gender english",
			text: "as a woman in my 30s",
			want: profile.Patch{profile.FieldGender: "female"},
		},
		{
			name: "gender swedish",
			text: "jag är en kille från Göteborg",
			want: profile.Patch{profile.FieldGender: "male"},
		},
		{
			name: "several fields at once",
			text: "I'm a man, born 1990, running 5 times per week, 5k in 21:15",
			want: profile.Patch{
				profile.FieldGender:         "male",
				profile.FieldBirthYear:      1990,
				profile.FieldWeeklySessions: 5,
				profile.FieldCurrent5KTime:  "00:21:15",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromText(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("patch = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}
