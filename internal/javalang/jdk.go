package javalang

import "strings"

// jdkPackages lists the exported top-level types of the JDK packages most
// often imported on demand. A name found here resolves as an external
// library type; a name missing from a listed package is treated as
// unresolvable.
var jdkPackages = map[string][]string{
	"java.util": {
		"AbstractCollection", "AbstractList", "AbstractMap", "AbstractQueue", "AbstractSequentialList",
		"AbstractSet", "ArrayDeque", "ArrayList", "Arrays", "Base64", "BitSet", "Calendar",
		"Collection", "Collections", "Comparator", "ConcurrentModificationException", "Currency",
		"Date", "Deque", "Dictionary", "DoubleSummaryStatistics", "EnumMap", "EnumSet", "Enumeration",
		"EventListener", "EventObject", "Formatter", "GregorianCalendar", "HashMap", "HashSet",
		"Hashtable", "IdentityHashMap", "IllegalFormatException", "InputMismatchException",
		"IntSummaryStatistics", "Iterator", "LinkedHashMap", "LinkedHashSet", "LinkedList", "List",
		"ListIterator", "Locale", "LongSummaryStatistics", "Map", "MissingResourceException",
		"NavigableMap", "NavigableSet", "NoSuchElementException", "Objects", "Optional",
		"OptionalDouble", "OptionalInt", "OptionalLong", "PrimitiveIterator", "PriorityQueue",
		"Properties", "Queue", "Random", "RandomAccess", "ResourceBundle", "Scanner", "SequencedCollection",
		"SequencedMap", "SequencedSet", "ServiceLoader", "Set", "SortedMap", "SortedSet", "Spliterator",
		"Spliterators", "SplittableRandom", "Stack", "StringJoiner", "StringTokenizer", "Timer",
		"TimerTask", "TimeZone", "TreeMap", "TreeSet", "UUID", "Vector", "WeakHashMap",
	},
	"java.util.function": {
		"BiConsumer", "BiFunction", "BinaryOperator", "BiPredicate", "BooleanSupplier", "Consumer",
		"DoubleBinaryOperator", "DoubleConsumer", "DoubleFunction", "DoublePredicate",
		"DoubleSupplier", "DoubleUnaryOperator", "Function", "IntBinaryOperator", "IntConsumer",
		"IntFunction", "IntPredicate", "IntSupplier", "IntUnaryOperator", "LongBinaryOperator",
		"LongConsumer", "LongFunction", "LongPredicate", "LongSupplier", "LongUnaryOperator",
		"ObjIntConsumer", "Predicate", "Supplier", "ToDoubleFunction", "ToIntFunction",
		"ToLongFunction", "UnaryOperator",
	},
	"java.util.stream": {
		"Collector", "Collectors", "DoubleStream", "IntStream", "LongStream", "Stream", "StreamSupport",
	},
	"java.util.concurrent": {
		"BlockingQueue", "Callable", "CompletableFuture", "CompletionStage", "ConcurrentHashMap",
		"ConcurrentLinkedQueue", "ConcurrentMap", "CopyOnWriteArrayList", "CountDownLatch",
		"CyclicBarrier", "ExecutionException", "Executor", "ExecutorService", "Executors", "Future",
		"LinkedBlockingQueue", "ScheduledExecutorService", "Semaphore", "ThreadLocalRandom",
		"TimeUnit", "TimeoutException",
	},
	"java.util.concurrent.atomic": {
		"AtomicBoolean", "AtomicInteger", "AtomicLong", "AtomicReference",
	},
	"java.util.regex": {
		"Matcher", "Pattern", "PatternSyntaxException",
	},
	"java.io": {
		"BufferedInputStream", "BufferedOutputStream", "BufferedReader", "BufferedWriter",
		"ByteArrayInputStream", "ByteArrayOutputStream", "Closeable", "DataInput", "DataOutput",
		"EOFException", "File", "FileInputStream", "FileNotFoundException", "FileOutputStream",
		"FileReader", "FileWriter", "Flushable", "IOException", "InputStream", "InputStreamReader",
		"ObjectInputStream", "ObjectOutputStream", "OutputStream", "OutputStreamWriter",
		"PrintStream", "PrintWriter", "Reader", "Serializable", "StringReader", "StringWriter",
		"UncheckedIOException", "UnsupportedEncodingException", "Writer",
	},
	"java.nio.file": {
		"DirectoryStream", "FileSystem", "FileSystems", "FileVisitResult", "Files", "InvalidPathException",
		"LinkOption", "NoSuchFileException", "OpenOption", "Path", "Paths", "StandardCopyOption",
		"StandardOpenOption",
	},
	"java.nio.charset": {
		"Charset", "StandardCharsets",
	},
	"java.net": {
		"HttpURLConnection", "InetAddress", "InetSocketAddress", "MalformedURLException", "ServerSocket",
		"Socket", "URI", "URISyntaxException", "URL", "URLDecoder", "URLEncoder",
	},
	"java.math": {
		"BigDecimal", "BigInteger", "MathContext", "RoundingMode",
	},
	"java.time": {
		"Clock", "Duration", "Instant", "LocalDate", "LocalDateTime", "LocalTime", "Period",
		"ZoneId", "ZoneOffset", "ZonedDateTime",
	},
	"java.lang.annotation": {
		"Annotation", "Documented", "ElementType", "Inherited", "Repeatable", "Retention",
		"RetentionPolicy", "Target",
	},
	"java.lang.reflect": {
		"AccessibleObject", "Array", "Constructor", "Field", "InvocationTargetException", "Member",
		"Method", "Modifier", "Parameter", "ParameterizedType", "Proxy", "Type", "TypeVariable",
	},
}

var jdkMembers = func() map[string]map[string]struct{} {
	m := make(map[string]map[string]struct{}, len(jdkPackages))
	for pkg, names := range jdkPackages {
		m[pkg] = setOf(names...)
	}
	return m
}()

// JDKPackageMember reports whether pkg is a known JDK package exporting a
// top-level type called simple. The second result reports whether pkg is
// known at all.
func JDKPackageMember(pkg, simple string) (member bool, known bool) {
	names, ok := jdkMembers[pkg]
	if !ok {
		return false, false
	}
	_, member = names[simple]
	return member, true
}

// FunctionalInterface returns the JDK functional interface matching a
// lambda or method reference shape, or "" when none exists. The result
// carries its type arguments: params are boxed and unknown results are
// written "?".
func FunctionalInterface(params []string, void bool) string {
	boxed := make([]string, len(params))
	for i, p := range params {
		boxed[i] = Box(p)
	}
	switch len(params) {
	case 0:
		if void {
			return "java.lang.Runnable"
		}
		return "java.util.function.Supplier<?>"
	case 1:
		if void {
			return "java.util.function.Consumer<" + boxed[0] + ">"
		}
		return "java.util.function.Function<" + boxed[0] + ", ?>"
	case 2:
		if void {
			return "java.util.function.BiConsumer<" + strings.Join(boxed, ", ") + ">"
		}
		return "java.util.function.BiFunction<" + strings.Join(boxed, ", ") + ", ?>"
	}
	return ""
}

// ThrowableMethods are the methods every exception inherits; calls to
// them never need a synthetic declaration.
var ThrowableMethods = setOf(
	"addSuppressed", "fillInStackTrace", "getCause", "getLocalizedMessage", "getMessage",
	"getStackTrace", "getSuppressed", "initCause", "printStackTrace", "setStackTrace", "toString",
)

// IsThrowableMethod reports methods declared by java.lang.Throwable.
func IsThrowableMethod(name string) bool {
	_, ok := ThrowableMethods[name]
	return ok
}

// ThrowableReturn returns the declared return type of a Throwable method,
// qualified.
func ThrowableReturn(name string) string {
	switch name {
	case "getMessage", "getLocalizedMessage", "toString":
		return "java.lang.String"
	case "getCause", "fillInStackTrace", "initCause":
		return "java.lang.Throwable"
	case "getStackTrace":
		return "java.lang.StackTraceElement[]"
	case "getSuppressed":
		return "java.lang.Throwable[]"
	}
	return "void"
}

// ObjectMethods are declared by java.lang.Object.
var ObjectMethods = setOf(
	"clone", "equals", "finalize", "getClass", "hashCode", "notify", "notifyAll", "toString", "wait",
)

// IsObjectMethod reports methods declared by java.lang.Object.
func IsObjectMethod(name string) bool {
	_, ok := ObjectMethods[name]
	return ok
}
