package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Расчёты по сделке и рейтинг районов
	InvalidInput         failure.ErrorCode = "InvalidInput"         // Нечисловые или отрицательные входные данные
	InvalidWeights       failure.ErrorCode = "InvalidWeights"       // Вес фактора отрицательный или не число
	InvalidJurisdiction  failure.ErrorCode = "InvalidJurisdiction"  // Неизвестный штат/территория
	InvalidOccupancy     failure.ErrorCode = "InvalidOccupancy"     // Не OO и не INV
	DuplicateAreaCode    failure.ErrorCode = "DuplicateAreaCode"    // Код района встречается дважды в одном расчёте
	MissingReferenceData failure.ErrorCode = "MissingReferenceData" // Нет таблицы пошлины для штата и типа владения
	SnapshotNotFound     failure.ErrorCode = "SnapshotNotFound"     // Рейтинг ещё ни разу не пересчитывался
)
