// Where: internal/release/policy.go
// What: IAM policy loading, filtering, and formatting.
// Why: permission.md shows the full and the restricted provisioning policy.
package release

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/copystructure"
)

// Policy is a decoded IAM policy document.
type Policy map[string]any

// Policy names read from the permissions directory (file stems).
const (
	ProvisioningPolicy   = "provisioning_policy"
	ExecutionPolicy      = "execution_policy"
	ExecutionPolicyTrust = "execution_policy_trust"
)

// DefaultAdminActions are stripped from the restricted provisioning policy.
var DefaultAdminActions = []string{
	"iam:AttachRolePolicy",
	"iam:CreateRole",
	"iam:DeleteRole",
	"iam:DeleteRolePolicy",
	"iam:DetachRolePolicy",
	"iam:PutRolePolicy",
	"iam:TagRole",
}

// LoadPolicies reads every *.json file in dir keyed by file stem. Files that
// cannot be read or decoded are reported through warn and skipped. A missing
// directory yields an empty set.
func LoadPolicies(dir string, warn func(string)) (map[string]Policy, error) {
	policies := map[string]Policy{}
	if warn == nil {
		warn = func(string) {}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return policies, nil
		}
		return nil, fmt.Errorf("read permissions directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			warn(fmt.Sprintf("Error: could not read %s: %v", name, err))
			continue
		}
		var policy Policy
		if err := json.Unmarshal(data, &policy); err != nil {
			warn(fmt.Sprintf("Error: %s is not a valid JSON file. %v", name, err))
			continue
		}
		policies[strings.TrimSuffix(name, ".json")] = policy
	}
	return policies, nil
}

// RemoveActions returns a copy of policy without the given actions.
// Action lists are filtered case-insensitively and statements left with no
// actions are dropped. A single string Action is dropped only on an exact,
// case-sensitive match. Statements without an Action key are kept.
func RemoveActions(policy Policy, actions []string) (Policy, error) {
	if policy == nil {
		return Policy{}, nil
	}
	copied, err := copystructure.Copy(map[string]any(policy))
	if err != nil {
		return nil, fmt.Errorf("copy policy: %w", err)
	}
	out, ok := copied.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("copy policy: unexpected type %T", copied)
	}
	statements, ok := out["Statement"].([]any)
	if !ok {
		return Policy(out), nil
	}

	removed := map[string]struct{}{}
	exact := map[string]struct{}{}
	for _, action := range actions {
		removed[strings.ToLower(action)] = struct{}{}
		exact[action] = struct{}{}
	}
	isRemoved := func(value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		_, hit := removed[strings.ToLower(s)]
		return hit
	}

	filtered := make([]any, 0, len(statements))
	for _, raw := range statements {
		statement, ok := raw.(map[string]any)
		if !ok {
			filtered = append(filtered, raw)
			continue
		}
		action, has := statement["Action"]
		if !has {
			filtered = append(filtered, statement)
			continue
		}
		switch value := action.(type) {
		case []any:
			kept := make([]any, 0, len(value))
			for _, item := range value {
				if !isRemoved(item) {
					kept = append(kept, item)
				}
			}
			if len(kept) == 0 {
				continue
			}
			statement["Action"] = kept
		case string:
			if _, hit := exact[value]; hit {
				continue
			}
		}
		filtered = append(filtered, statement)
	}
	out["Statement"] = filtered
	return Policy(out), nil
}

// FormatPolicy renders policy as JSON with four-space indentation.
func FormatPolicy(policy Policy) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(policy); err != nil {
		return "", fmt.Errorf("format policy: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
