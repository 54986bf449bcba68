package droidsdk

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PropertiesFileName is the per-build file recording the SDK location.
	PropertiesFileName = "local.properties"
	// SdkDirKey is the location key inside local.properties.
	SdkDirKey = "sdk.dir"

	propertiesHeader = "# DO NOT check this file into source control."
)

// PropertiesStore reads and writes local.properties in a build root.
type PropertiesStore struct {
	Path string
	// EscapeBackslashes doubles backslashes in written values (windows paths).
	EscapeBackslashes bool
}

// NewPropertiesStore returns the store for buildRoot, escaping per the environment's OS family.
func NewPropertiesStore(buildRoot string, env *Environment) *PropertiesStore {
	return &PropertiesStore{
		Path:              filepath.Join(buildRoot, PropertiesFileName),
		EscapeBackslashes: env.IsWindows(),
	}
}

// Exists reports whether the properties file is present.
func (s *PropertiesStore) Exists() bool {
	info, err := os.Stat(s.Path)
	return err == nil && !info.IsDir()
}

// Get returns the unescaped value of key. A missing file is reported as not
// found. When the key repeats, the last occurrence wins.
func (s *PropertiesStore) Get(key string) (string, bool, error) {
	f, err := os.Open(s.Path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	var (
		val   string
		found bool
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		k, v, ok := parsePropertyLine(scanner.Text())
		if ok && k == key {
			val, found = v, true
		}
	}
	if err := scanner.Err(); err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	return val, found, nil
}

// Set persists key=value.
//
// A missing file is created with the provenance header. An existing file keeps all of
// its lines; the entry is appended, or, if the key is already present, its first
// occurrence is rewritten and later duplicates dropped.
func (s *PropertiesStore) Set(key, value string) error {
	if s.EscapeBackslashes {
		value = strings.ReplaceAll(value, `\`, `\\`)
	}
	entry := key + "=" + value

	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		content := propertiesHeader + "\n" + entry + "\n"
		if err := os.WriteFile(s.Path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.Path, err)
		}
		debugf("Created %s with %s\n", s.Path, key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	lines, replaced := replaceKeyLines(data, key, entry)
	if !replaced {
		f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("failed to open %s for append: %w", s.Path, err)
		}
		defer f.Close()
		prefix := ""
		if len(data) > 0 && data[len(data)-1] != '\n' {
			prefix = "\n"
		}
		if _, err := f.WriteString(prefix + entry + "\n"); err != nil {
			return fmt.Errorf("failed to append to %s: %w", s.Path, err)
		}
		debugf("Appended %s to %s\n", key, s.Path)
		return nil
	}

	if err := os.WriteFile(s.Path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to rewrite %s: %w", s.Path, err)
	}
	debugf("Rewrote %s in %s\n", key, s.Path)
	return nil
}

// replaceKeyLines swaps the first line defining key for entry and removes the rest.
func replaceKeyLines(data []byte, key, entry string) ([]string, bool) {
	var out []string
	replaced := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if lineKey(line) == key {
			if !replaced {
				out = append(out, entry)
				replaced = true
			}
			continue
		}
		out = append(out, line)
	}
	return out, replaced
}

func lineKey(line string) string {
	key, _, _ := parsePropertyLine(line)
	return key
}

// parsePropertyLine splits one properties line. The key ends at the first
// unescaped '=', ':' or whitespace; the separator may be surrounded by
// whitespace. Key and value are returned unescaped.
func parsePropertyLine(line string) (key, value string, ok bool) {
	line = strings.TrimLeft(line, " \t\f")
	if line == "" || line[0] == '#' || line[0] == '!' {
		return "", "", false
	}

	end := len(line)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' {
			i++
			continue
		}
		if c == '=' || c == ':' || c == ' ' || c == '\t' || c == '\f' {
			end = i
			break
		}
	}
	rest := strings.TrimLeft(line[end:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimLeft(rest[1:], " \t\f")
	}
	return unescapePropertyValue(line[:end]), unescapePropertyValue(rest), true
}

// unescapePropertyValue undoes backslash escapes (\\, \:, \=, \ ) in a stored value.
func unescapePropertyValue(val string) string {
	if !strings.Contains(val, `\`) {
		return val
	}
	var b strings.Builder
	for i := 0; i < len(val); i++ {
		if val[i] == '\\' && i+1 < len(val) {
			i++
		}
		b.WriteByte(val[i])
	}
	return b.String()
}
