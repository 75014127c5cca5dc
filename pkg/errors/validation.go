package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety and correctness.
// It rejects names that could be used for path traversal or injection when
// they end up in registry URLs or install command arguments:
//   - No empty names
//   - No control characters or whitespace
//   - No path traversal sequences (.., //, backslash)
//   - Maximum length of 256 characters
//
// Registry-specific rules are applied by [ValidateRegistryPackage].
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name contains whitespace: %q", name)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

var (
	npmPackageNameRegex    = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)
	pythonPackageNameRegex = regexp.MustCompile(`^([A-Za-z0-9]|[A-Za-z0-9][A-Za-z0-9._-]*[A-Za-z0-9])$`)
	cratesPackageNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	goModulePathRegex      = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)
)

var registryNameRules = map[string]*regexp.Regexp{
	"npm":     npmPackageNameRegex,
	"pypi":    pythonPackageNameRegex,
	"crates":  cratesPackageNameRegex,
	"goproxy": goModulePathRegex,
}

// ValidateRegistryPackage validates name against the generic rules and then
// against the naming rules of the given registry. Unknown registries only get
// the generic checks.
func ValidateRegistryPackage(registry, name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	re, ok := registryNameRules[registry]
	if !ok {
		return nil
	}
	if registry == "npm" && strings.ToLower(name) != name {
		return New(ErrCodeInvalidPackage, "npm package names must be lowercase: %q", name)
	}
	if !re.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid %s package name: %q", registry, name)
	}
	return nil
}
