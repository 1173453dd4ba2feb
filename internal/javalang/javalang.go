// Package javalang answers questions about the JDK without a JDK: which
// simple names java.lang defines, which JDK classes are final, which
// operand types a binary operator admits, and which members the common
// JDK packages export.
package javalang

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var primitives = setOf("int", "short", "byte", "long", "boolean", "float", "double", "char")

var javaLangNames = setOf(
	"AbstractMethodError", "Appendable", "ArithmeticException", "ArrayIndexOutOfBoundsException",
	"ArrayStoreException", "AssertionError", "AutoCloseable", "Boolean", "BootstrapMethodError",
	"Byte", "Character", "Character.Subset", "Character.UnicodeBlock", "Character.UnicodeScript",
	"CharSequence", "Class", "ClassCastException", "ClassCircularityError", "ClassFormatError",
	"ClassLoader", "ClassNotFoundException", "ClassValue", "Cloneable", "CloneNotSupportedException",
	"Comparable", "Deprecated", "Double", "Enum", "Enum.EnumDesc", "EnumConstantNotPresentException",
	"Error", "Exception", "ExceptionInInitializerError", "Float", "FunctionalInterface",
	"IdentityException", "IllegalAccessError", "IllegalAccessException", "IllegalArgumentException",
	"IllegalCallerException", "IllegalMonitorStateException", "IllegalStateException",
	"IllegalThreadStateException", "IncompatibleClassChangeError", "IndexOutOfBoundsException",
	"InheritableThreadLocal", "InstantiationError", "InstantiationException", "Integer",
	"InternalError", "InterruptedException", "Iterable", "LayerInstantiationException",
	"LinkageError", "Long", "MatchException", "Math", "Module", "ModuleLayer",
	"ModuleLayer.Controller", "NegativeArraySizeException", "NoClassDefFoundError",
	"NoSuchFieldError", "NoSuchFieldException", "NoSuchMethodError", "NoSuchMethodException",
	"NullPointerException", "Number", "NumberFormatException", "Object", "OutOfMemoryError",
	"Override", "Package", "Process", "ProcessBuilder", "ProcessBuilder.Redirect",
	"ProcessBuilder.Redirect.Type", "ProcessHandle", "ProcessHandle.Info", "Readable", "Record",
	"ReflectiveOperationException", "Runnable", "Runtime", "Runtime.Version", "RuntimeException",
	"RuntimePermission", "SafeVarargs", "SecurityException", "SecurityManager", "Short",
	"StackOverflowError", "StackTraceElement", "StackWalker", "StackWalker.Option",
	"StackWalker.StackFrame", "StrictMath", "String", "StringBuffer", "StringBuilder",
	"StringIndexOutOfBoundsException", "SuppressWarnings", "System", "System.Logger",
	"System.Logger.Level", "System.LoggerFinder", "Thread", "Thread.Builder",
	"Thread.Builder.OfPlatform", "Thread.Builder.OfVirtual", "Thread.State",
	"Thread.UncaughtExceptionHandler", "ThreadDeath", "ThreadGroup", "ThreadLocal", "Throwable",
	"TypeNotPresentException", "UnknownError", "UnsatisfiedLinkError",
	"UnsupportedClassVersionError", "UnsupportedOperationException", "VerifyError",
	"VirtualMachineError", "Void", "WrongThreadException",
)

// finalJDKTypes is incomplete; it lists the java.lang final classes, which
// a synthetic type must never extend.
var finalJDKTypes = func() map[string]struct{} {
	simple := []string{
		"String", "Class", "Integer", "Byte", "Short", "Long", "Double", "Float", "Character",
		"Character.UnicodeBlock", "Boolean", "Compiler", "Math", "ProcessBuilder",
		"RuntimePermission", "StackTraceElement", "StrictMath", "StringBuffer", "StringBuilder",
		"System", "Void",
	}
	m := make(map[string]struct{}, 2*len(simple))
	for _, s := range simple {
		m[s] = struct{}{}
		m["java.lang."+s] = struct{}{}
	}
	return m
}()

var boxes = map[string]string{
	"int":     "Integer",
	"short":   "Short",
	"byte":    "Byte",
	"long":    "Long",
	"boolean": "Boolean",
	"float":   "Float",
	"double":  "Double",
	"char":    "Character",
	"void":    "Void",
}

var (
	integral = []string{"int", "Integer", "long", "Long", "byte", "Byte", "short", "Short"}
	numeric  = []string{"int", "Integer", "long", "Long", "byte", "Byte", "short", "Short",
		"float", "Float", "double", "Double"}
	numericAndString = append(append([]string(nil), numeric...), "String")
	booleans         = []string{"boolean", "Boolean"}
	numericAndBool   = append(append([]string(nil), numeric...), booleans...)
)

func setOf(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// IsPrimitive reports the eight primitive type names.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}

// IsJavaLangName reports simple (or java.lang-relative nested) names
// defined by java.lang. Primitives are not included.
func IsJavaLangName(name string) bool {
	_, ok := javaLangNames[name]
	return ok
}

// IsJavaLangOrPrimitive reports java.lang names and primitives.
func IsJavaLangOrPrimitive(name string) bool {
	return IsPrimitive(name) || IsJavaLangName(name)
}

// InJDKPackage reports package or qualified names provided by the JDK.
// javax.annotation is excluded because it ships outside the JDK.
func InJDKPackage(qualifiedName string) bool {
	if strings.HasPrefix(qualifiedName, "javax.annotation") {
		return false
	}
	return strings.HasPrefix(qualifiedName, "java.") ||
		strings.HasPrefix(qualifiedName, "javax.") ||
		strings.HasPrefix(qualifiedName, "com.sun.") ||
		strings.HasPrefix(qualifiedName, "jdk.")
}

// IsFinalJDKClass reports whether a simple or qualified name may be a
// final JDK class.
func IsFinalJDKClass(name string) bool {
	_, ok := finalJDKTypes[name]
	return ok
}

// Box returns the wrapper of a primitive, or name unchanged.
func Box(name string) string {
	if b, ok := boxes[name]; ok {
		return b
	}
	return name
}

// TypesForOp returns the operand types a binary operator admits. The first
// element is the default when nothing else is known. It returns nil for
// an unknown operator.
func TypesForOp(op string) []string {
	switch op {
	case "*", "/", "%", "-", "<", "<=", ">", ">=":
		return numeric
	case "+":
		return numericAndString
	case ">>", ">>>", "<<":
		return integral
	case "==", "!=", "^", "&", "|":
		return numericAndBool
	case "||", "&&":
		return booleans
	}
	return nil
}

// BothClassTypes reports whether both types spell java.lang.Class<...>.
func BothClassTypes(t1, t2 string) bool {
	isClass := func(t string) bool {
		return strings.HasPrefix(t, "Class<") || strings.HasPrefix(t, "java.lang.Class<")
	}
	return isClass(t1) && isClass(t2)
}

// IsCapitalized reports whether a name starts with an upper-case letter,
// the convention the engine uses to tell class names from packages and
// variables.
func IsCapitalized(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// IsClassName reports whether the last segment of a dotted name looks like
// a class name.
func IsClassName(name string) bool {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return IsCapitalized(name)
}

// IsClassPath reports dotted names ending in a class name, such as
// Outer.Inner or com.example.Outer. Segments never contain spaces.
func IsClassPath(name string) bool {
	return strings.Contains(name, ".") && !strings.Contains(name, " ") && IsClassName(name)
}

// SimpleName returns the last segment of a dotted name, with any type
// arguments removed.
func SimpleName(name string) string {
	name = Erase(name)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Erase strips type arguments from a type name: Map<K, V> -> Map.
func Erase(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		suffix := ""
		if j := strings.LastIndexByte(name, '>'); j > i {
			suffix = name[j+1:]
		}
		return name[:i] + suffix
	}
	return name
}

// DefaultValue returns a literal assignable to a variable of the given
// type: zero for numeric primitives, false for boolean, null otherwise.
func DefaultValue(typeName string) string {
	switch typeName {
	case "byte":
		return "(byte) 0"
	case "short":
		return "(short) 0"
	case "int":
		return "0"
	case "long":
		return "0L"
	case "float":
		return "0.0f"
	case "double":
		return "0.0d"
	case "char":
		return "'\\u0000'"
	case "boolean":
		return "false"
	}
	return "null"
}
