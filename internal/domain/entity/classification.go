package entity

// Classification — нормализованный результат классификации снимка,
// общий для удалённой модели и локальной эвристики.
type Classification struct {
	Label        string  // метка верхнего предсказания
	InfectedProb float64 // вероятность заражения, всегда в [0,1]
	Meta         string  // сырой вывод классификатора для аудита
}
