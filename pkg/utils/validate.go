package utils

import "regexp"

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool { return emailRe.MatchString(email) }

// ValidPassword 至少 6 个字符。
func ValidPassword(pw string) bool { return len(pw) >= 6 }

// ValidUsername 去掉首尾空白后至少 3 个字符。
func ValidUsername(name string) bool { return len(name) >= 3 }
