package entity

// HealthVerdict результат классификации одной фотографии улья.
type HealthVerdict struct {
	Healthy     bool      // предсказанное состояние улья
	Descriptors int       // число найденных дескрипторов
	Histogram   Histogram // признаки, на которых сделан вывод
}

// Informative сообщает, были ли на фото признаки для классификации.
func (v HealthVerdict) Informative() bool {
	return v.Descriptors > 0
}
