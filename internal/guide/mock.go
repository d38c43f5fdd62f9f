package guide

import (
	"fmt"
	"strings"
)

// MockPrefix marks guides produced without any AI provider.
const MockPrefix = "[MOCK MODE: No API Key Detected]"

// MockGuide is the canned guide returned when every provider is unavailable.
func MockGuide(agency string) string {
	agency = strings.TrimSpace(agency)
	return fmt.Sprintf(`%s

**👋 Kamusta!**
Getting your requirements for %[2]s doesn't have to be stressful. Here is your simple guide:

**📋 Requirements Checklist**
• Valid ID (Original + Photocopy)
• Application Form (from %[2]s website)
• Payment Proof (keep the receipt!)

**👣 Step-by-Step Process**
1. Visit the %[2]s website and book an appointment online.
2. Print your application form.
3. Go to the office on your scheduled date (wag ma-late!).
4. Pay the fee and wait for processing.

**💰 Estimated Cost & Validity**
• Fee: Approx. PHP 500 - 1,000
• Validity: 1 Year (subject to change)

**💡 Pro Tip:** Bring a black pen and extra photocopies just in case!`, MockPrefix, agency)
}
