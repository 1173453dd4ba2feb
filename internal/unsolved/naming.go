package unsolved

import (
	"strconv"
	"strings"
)

// Names of invented types. The oracle loop recognises synthetic types by
// these shapes when it decides which declarations it may rewrite.
const (
	// SyntheticTypeFor prefixes the type of an unknown variable:
	// SyntheticTypeForCount.
	SyntheticTypeFor = "SyntheticTypeFor"
	// ReturnTypeSuffix ends the type of an unknown call: GetCountReturnType.
	ReturnTypeSuffix = "ReturnType"
	// SyntheticTypeSuffix ends the type of a statically imported field.
	SyntheticTypeSuffix = "SyntheticType"
	// SyntheticFunction and SyntheticConsumer name functional interfaces
	// of more than two parameters: SyntheticFunction3.
	SyntheticFunction = "SyntheticFunction"
	SyntheticConsumer = "SyntheticConsumer"
	// SyntheticUnconstrainedType replaces a return type the checker
	// reports conflicting requirements for.
	SyntheticUnconstrainedType = "SyntheticUnconstrainedType"
)

// IsSynthetic reports whether a simple type name was invented by the
// generator.
func IsSynthetic(simple string) bool {
	simple = strings.TrimRight(simple, "[]")
	switch {
	case strings.HasPrefix(simple, SyntheticTypeFor),
		strings.HasPrefix(simple, SyntheticFunction),
		strings.HasPrefix(simple, SyntheticConsumer),
		strings.HasSuffix(simple, ReturnTypeSuffix),
		strings.HasSuffix(simple, SyntheticTypeSuffix),
		simple == SyntheticUnconstrainedType:
		return true
	}
	return false
}

// StaticMemberTypeName names the type of a statically imported member in
// the owner's package: com.example.Util.count becomes
// com.example.ComExampleUtilCountSyntheticType, and a method gets the
// ReturnType suffix instead. ok is false when member has fewer than three
// segments.
func StaticMemberTypeName(member string, method bool) (name string, ok bool) {
	parts := strings.Split(member, ".")
	if len(parts) <= 2 {
		return "", false
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(capitalize(p))
	}
	if method {
		b.WriteString(ReturnTypeSuffix)
	} else {
		b.WriteString(SyntheticTypeSuffix)
	}
	return strings.Join(parts[:len(parts)-2], ".") + "." + b.String(), true
}

// variableTypeName is the simple name of an unknown variable's type.
func variableTypeName(variable string) string { return SyntheticTypeFor + capitalize(variable) }

// returnTypeName is the simple name of an unknown call's result type.
func returnTypeName(method string) string { return capitalize(method) + ReturnTypeSuffix }

// typeVarName names the i-th type parameter of a synthetic declaration.
func typeVarName(i int) string {
	if i == 0 {
		return "T"
	}
	return "T" + strconv.Itoa(i)
}
