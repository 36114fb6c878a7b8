// Package format 定義辯論賽制的靜態資料。
//
// 目前僅支援亞洲議會制（Asian Parliamentary）：六篇立論加兩篇結辯，
// 以及質詢（POI）的保護時間規則。結辯不是獨立席位，
// 由首相與反對黨領袖發表，對應關係由 SeatFor 以純函式查表取得。
package format
