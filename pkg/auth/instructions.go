package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide writes step-by-step instructions for obtaining an
// Instagram Graph API access token
func ShowTokenGuide(w io.Writer) {
	rule := strings.Repeat("=", 80)
	lines := []string{
		rule,
		"📚 INSTAGRAM ACCESS TOKEN GUIDE",
		rule,
		"",
		"This tool reads your own account through the Instagram Graph API",
		"(https://graph.instagram.com). It needs a user access token.",
		"",
		"🧩 STEP 1: Create a Meta app",
		"   - Go to https://developers.facebook.com/apps and create an app",
		"   - Add the 'Instagram' product (API setup with Instagram login)",
		"",
		"👤 STEP 2: Connect your account",
		"   - Your Instagram account must be a Business or Creator account",
		"   - Add it under 'Generate access tokens' in the app dashboard",
		"",
		"🔑 STEP 3: Generate the token",
		"   - Click 'Generate token' next to your account and approve the",
		"     instagram_business_basic, instagram_business_manage_comments",
		"     and instagram_business_content_publish permissions",
		"   - Copy the token (it usually starts with IG...)",
		"",
		"💡 TIPS:",
		"   • Long-lived tokens expire after 60 days; refresh or regenerate them",
		"   • Insights are only available for Business and Creator accounts",
		"   • You can also export ACCESS_TOKEN or put it in a .env file",
		"",
		"⚠️  SECURITY WARNING:",
		"   • The token gives access to your account's media and comments",
		"   • NEVER share it or commit it to a repository",
		"",
		rule,
		"",
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// ShowQuickTokenGuide writes a condensed version for experienced users
func ShowQuickTokenGuide(w io.Writer) {
	fmt.Fprintln(w, "\n🔑 Quick Guide: developers.facebook.com → your app → Instagram → Generate access tokens")
	fmt.Fprintln(w, "   Need: a user access token for a Business or Creator account")
}
