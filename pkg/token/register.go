package token

import (
	"strings"
	"sync"
)

// Dialect keywords live above maxBuiltin and are allocated on first use.
var (
	registryMu   sync.RWMutex
	nextDynamic  = maxBuiltin
	dynamicNames = make(map[TokenType]string)
	dynamicByKey = make(map[string]TokenType)
)

// Register returns the token type for a dialect keyword such as TOP or
// QUALIFY, allocating one on first use. Names are case-insensitive and a
// builtin keyword name returns the builtin type, so dialects can share
// keywords freely.
func Register(name string) TokenType {
	key := strings.ToLower(name)
	if t, ok := keywords[key]; ok {
		return t
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := dynamicByKey[key]; ok {
		return t
	}
	nextDynamic++
	dynamicNames[nextDynamic] = strings.ToUpper(name)
	dynamicByKey[key] = nextDynamic
	return nextDynamic
}

func getDynamicName(t TokenType) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	name, ok := dynamicNames[t]
	return name, ok
}

// IsDynamic reports whether t was allocated by Register.
func IsDynamic(t TokenType) bool {
	return t > maxBuiltin
}
