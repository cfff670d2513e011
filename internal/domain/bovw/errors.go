package bovw

import "errors"

var (
	// ErrInvalidSize размер словаря должен быть положительным.
	ErrInvalidSize = errors.New("bovw: dictionary size must be positive")
	// ErrInvalidConfig некорректные параметры кластеризации.
	ErrInvalidConfig = errors.New("bovw: invalid builder config")
	// ErrEmptyPool нет дескрипторов для построения словаря.
	ErrEmptyPool = errors.New("bovw: empty descriptor pool")
	// ErrEmptyDictionary словарь не содержит ни одного слова.
	ErrEmptyDictionary = errors.New("bovw: empty dictionary")
	// ErrDimensionMismatch размерность дескриптора не совпадает со словарём.
	ErrDimensionMismatch = errors.New("bovw: descriptor dimension mismatch")
	// ErrNonFiniteDescriptor дескриптор содержит NaN или бесконечность.
	ErrNonFiniteDescriptor = errors.New("bovw: descriptor has non-finite component")
	// ErrWordOutOfRange индекс слова вне диапазона [0, K).
	ErrWordOutOfRange = errors.New("bovw: word index out of range")
)
