// Package blacklist scrapes blacklist strings from an HTML threat feed.
//
// Every anchor element of the feed contributes its trimmed text content; the
// href is ignored because threat feeds usually render the indicator itself
// as the link text. Parsing is lenient: broken markup yields whatever anchors
// the HTML5 tree builder can recover and never fails.
package blacklist
