package csharp

import "strings"

// frameworkNamespaces are the root namespaces shipped with the runtime.
// Usages binding into them are neither local nor package dependencies.
var frameworkNamespaces = map[string]bool{
	"System":        true,
	"Microsoft":     true,
	"Windows":       true,
	"Internal":      true,
	"MSBuild":       true,
	"Accessibility": true,
}

// frameworkTypes are common base-library type names that appear
// constantly in usage positions (generics, base lists, attributes).
// Without this set every file would warn about List or Task; the scan
// is syntactic and cannot bind bare names to System namespaces.
var frameworkTypes = map[string]bool{
	"Action": true, "ArgumentException": true, "ArgumentNullException": true,
	"Array": true, "Attribute": true, "Boolean": true, "Byte": true,
	"Char": true, "Comparer": true, "Console": true, "Convert": true,
	"DateTime": true, "DateTimeOffset": true, "Decimal": true,
	"Dictionary": true, "Double": true, "Enum": true, "Enumerable": true,
	"EventArgs": true, "EventHandler": true, "Exception": true, "File": true,
	"Flags": true, "Func": true, "Guid": true, "HashSet": true,
	"ICollection": true, "IComparable": true, "IDictionary": true,
	"IDisposable": true, "IEnumerable": true, "IEnumerator": true,
	"IEquatable": true, "IList": true, "IQueryable": true,
	"IReadOnlyCollection": true, "IReadOnlyDictionary": true,
	"IReadOnlyList": true, "ISet": true, "Int16": true, "Int32": true,
	"Int64": true, "InvalidOperationException": true, "KeyValuePair": true,
	"Lazy": true, "LinkedList": true, "List": true, "Math": true,
	"Memory": true, "Nullable": true, "Object": true, "Obsolete": true,
	"Path": true, "Queue": true, "Random": true, "ReadOnlyMemory": true,
	"ReadOnlySpan": true, "Regex": true, "Serializable": true, "Single": true,
	"SortedDictionary": true, "SortedSet": true, "Span": true, "Stack": true,
	"Stopwatch": true, "Stream": true, "String": true, "StringBuilder": true,
	"StringComparer": true, "Task": true, "TimeSpan": true, "Tuple": true,
	"Type": true, "UInt16": true, "UInt32": true, "UInt64": true, "Uri": true,
	"ValueTask": true, "Version": true,
}

// isFrameworkNamespace reports whether ns roots in a runtime namespace.
func isFrameworkNamespace(ns string) bool {
	root := ns
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		root = ns[:i]
	}
	return frameworkNamespaces[root]
}

// isFrameworkType reports whether name is a well-known base-library type.
func isFrameworkType(name string) bool {
	return frameworkTypes[name]
}
