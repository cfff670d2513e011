// Package bovw реализует модель "мешка визуальных слов": построение словаря
// дескрипторов k-means кластеризацией, поиск ближайшего визуального слова и
// сборку гистограммы изображения по словарю.
//
// Словарь после построения только читается, поэтому NearestWord, Assign и
// Histogram можно вызывать из нескольких горутин одновременно.
package bovw
