package paths

// Storage container types.
var (
	StorageMap       = New("frame_support", "storage", "types", "map", "StorageMap")
	StorageDoubleMap = New("frame_support", "storage", "types", "double_map", "StorageDoubleMap")
	StorageNMap      = New("frame_support", "storage", "types", "nmap", "StorageNMap")
)

// Hashers that are not safe against attacker-chosen keys.
var (
	Twox64Concat = New("frame_support", "hash", "Twox64Concat")
	Twox128      = New("frame_support", "hash", "Twox128")
	Twox256      = New("frame_support", "hash", "Twox256")
	Identity     = New("frame_support", "hash", "Identity")
)

// Traits declaring the iteration and mutation APIs.
var (
	IterableStorageMap       = New("frame_support", "storage", "IterableStorageMap")
	IterableStorageDoubleMap = New("frame_support", "storage", "IterableStorageDoubleMap")
	StorageMapTrait          = New("frame_support", "storage", "StorageMap")
	StorageDoubleMapTrait    = New("frame_support", "storage", "StorageDoubleMap")
)

// WithTransaction is the transactional wrapper an extrinsic body must end in.
var WithTransaction = New("frame_support", "storage", "transactional", "with_transaction")

// Operation groups per container kind. iter_prefix, drain_prefix and
// remove_prefix operate on key prefixes; they are still matched exactly.
var (
	MapIteration = NewSet("map iteration",
		Methods(IterableStorageMap, "iter", "drain")...)
	MapMutation = NewSet("map mutation",
		Methods(StorageMapTrait, "insert", "swap", "remove", "take", "append", "mutate", "try_mutate",
			"try_mutate_exists", "migrate_key", "migrate_key_from_blake")...)

	DoubleMapIteration = NewSet("double map iteration",
		Methods(IterableStorageDoubleMap, "iter_prefix", "drain_prefix", "iter", "drain")...)
	DoubleMapMutation = NewSet("double map mutation",
		Methods(StorageDoubleMapTrait, "swap", "take", "insert", "remove", "remove_prefix", "mutate", "append", "try_mutate", "try_mutate_exists")...)
)

// StorageContainers lists the storage types whose hasher choice matters.
var StorageContainers = NewSet("storage containers", StorageMap, StorageDoubleMap, StorageNMap)

// InsecureHashers lists hashers that require a documented security argument.
var InsecureHashers = NewSet("insecure hashers", Twox64Concat, Twox128, Twox256, Identity)
