package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Доступ к storage
	StoInfo          Code = 1000
	StoIterateMutate Code = 1001

	// Документация
	DocInfo                Code = 2000
	DocMissingSecurity     Code = 2001
	DocUnbalancedBackticks Code = 2002

	// Extrinsics
	ExtInfo                 Code = 3000
	ExtCallIndex            Code = 3001
	ExtMissingTransactional Code = 3002

	// Гигиена runtime-крейта
	RtmInfo                 Code = 4000
	RtmMissingPanicLints    Code = 4001
	RtmSinglepassBenchmarks Code = 4002

	// Загрузка единиц анализа
	IOLoadError   Code = 5001
	IOInvalidUnit Code = 5002

	// Движок
	EngInfo               Code = 6000
	EngAnalysisIncomplete Code = 6001
	EngTimings            Code = 6002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		StoInfo:                 "Storage information",
		StoIterateMutate:        "Storage mutated while being iterated",
		DocInfo:                 "Documentation information",
		DocMissingSecurity:      "Missing security section in documentation",
		DocUnbalancedBackticks:  "Unbalanced backticks in documentation",
		ExtInfo:                 "Extrinsic information",
		ExtCallIndex:            "Extrinsic call index missing or wrong",
		ExtMissingTransactional: "Extrinsic not wrapped in a transaction",
		RtmInfo:                 "Runtime crate information",
		RtmMissingPanicLints:    "Panic lints not enabled for the crate",
		RtmSinglepassBenchmarks: "Benchmarks not compiled for tests",
		IOLoadError:             "Failed to load analysis unit",
		IOInvalidUnit:           "Malformed analysis unit",
		EngInfo:                 "Engine information",
		EngAnalysisIncomplete:   "Analysis could not complete",
		EngTimings:              "Phase timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("STO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DOC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EXT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("RTM%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("ENG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
