package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", TagEnglish},
		{"english sentence", "This medicine guarantees 100% cure, no side effects ever.", TagEnglish},
		{"hindi sentence", "यह दवा सौ प्रतिशत इलाज की गारंटी देती है।", TagHindi},
		{"mixed mostly hindi", "यह उत्पाद बिल्कुल सुरक्षित है और कोई जोखिम नहीं है। Offer!", TagHindi},
		{"mixed mostly english", "The product नमस्ते is completely safe for everyone to use daily.", TagEnglish},
		{"few devanagari runes", "ok नम", TagEnglish},
		{"numbers and punctuation", "100% !!! ???", TagEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("Plain English guidance about the claim.", TagEnglish))
	assert.True(t, Matches("यह कथन लागू नियमों के अनुरूप नहीं है।", TagHindi))
	assert.False(t, Matches("Plain English guidance about the claim.", TagHindi))
	assert.False(t, Matches("यह कथन लागू नियमों के अनुरूप नहीं है।", TagEnglish))
}
