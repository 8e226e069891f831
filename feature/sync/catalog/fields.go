package catalog

// Compiled field catalogs, one per content type. Catalog order is the
// canonical field order for content hashing; reordering entries changes
// every record's hash and forces a full re-sync.

var catalogs = map[ContentType][]Field{
	ContentTypeBooks:       booksCatalog,
	ContentTypeMovies:      moviesCatalog,
	ContentTypeTV:          tvCatalog,
	ContentTypeDocumentary: documentaryCatalog,
}

var booksCatalog = []Field{
	{DomainName: SubjectIDDomainName, DisplayName: "Subject ID", Kind: KindText, Required: true, Description: "豆瓣条目 ID，同步的连接键"},
	{DomainName: "title", DisplayName: "书名", Kind: KindText, Required: true, Description: "书籍标题"},
	{DomainName: "author", DisplayName: "作者", Kind: KindText, Description: "作者，多人以 / 分隔"},
	{DomainName: "publisher", DisplayName: "出版社", Kind: KindText, Description: "出版社名称"},
	{DomainName: "publishDate", DisplayName: "出版日期", Kind: KindText, Description: "出版日期（原样文本）"},
	{DomainName: "doubanRating", DisplayName: "豆瓣评分", Kind: KindNumber, NestedPath: "rating.average", Description: "豆瓣均分"},
	{DomainName: "myRating", DisplayName: "我的评分", Kind: KindRating, Description: "用户打分 1-5"},
	{DomainName: "status", DisplayName: "状态", Kind: KindSingleSelect, Description: "想读 / 在读 / 读过"},
	{DomainName: "markDate", DisplayName: "标记日期", Kind: KindDate, Description: "用户标记时间"},
	{DomainName: "tags", DisplayName: "个人标签", Kind: KindText, Description: "用户标签"},
	{DomainName: "comment", DisplayName: "短评", Kind: KindText, Description: "用户短评"},
	{DomainName: "url", DisplayName: "条目链接", Kind: KindURL, Description: "豆瓣条目链接"},
}

var moviesCatalog = []Field{
	{DomainName: SubjectIDDomainName, DisplayName: "Subject ID", Kind: KindText, Required: true, Description: "豆瓣条目 ID，同步的连接键"},
	{DomainName: "title", DisplayName: "片名", Kind: KindText, Required: true, Description: "电影标题"},
	{DomainName: "director", DisplayName: "导演", Kind: KindText, Description: "导演，多人以 / 分隔"},
	{DomainName: "cast", DisplayName: "主演", Kind: KindText, Description: "主要演员"},
	{DomainName: "year", DisplayName: "年份", Kind: KindNumber, Description: "上映年份"},
	{DomainName: "doubanRating", DisplayName: "豆瓣评分", Kind: KindNumber, NestedPath: "rating.average", Description: "豆瓣均分"},
	{DomainName: "myRating", DisplayName: "我的评分", Kind: KindRating, Description: "用户打分 1-5"},
	{DomainName: "status", DisplayName: "状态", Kind: KindSingleSelect, Description: "想看 / 在看 / 看过"},
	{DomainName: "markDate", DisplayName: "标记日期", Kind: KindDate, Description: "用户标记时间"},
	{DomainName: "tags", DisplayName: "个人标签", Kind: KindText, Description: "用户标签"},
	{DomainName: "comment", DisplayName: "短评", Kind: KindText, Description: "用户短评"},
	{DomainName: "url", DisplayName: "条目链接", Kind: KindURL, Description: "豆瓣条目链接"},
}

var tvCatalog = []Field{
	{DomainName: SubjectIDDomainName, DisplayName: "Subject ID", Kind: KindText, Required: true, Description: "豆瓣条目 ID，同步的连接键"},
	{DomainName: "title", DisplayName: "剧名", Kind: KindText, Required: true, Description: "剧集标题"},
	{DomainName: "director", DisplayName: "导演", Kind: KindText, Description: "导演"},
	{DomainName: "cast", DisplayName: "主演", Kind: KindText, Description: "主要演员"},
	{DomainName: "episodes", DisplayName: "集数", Kind: KindNumber, Description: "总集数"},
	{DomainName: "doubanRating", DisplayName: "豆瓣评分", Kind: KindNumber, NestedPath: "rating.average", Description: "豆瓣均分"},
	{DomainName: "myRating", DisplayName: "我的评分", Kind: KindRating, Description: "用户打分 1-5"},
	{DomainName: "status", DisplayName: "状态", Kind: KindSingleSelect, Description: "想看 / 在看 / 看过"},
	{DomainName: "markDate", DisplayName: "标记日期", Kind: KindDate, Description: "用户标记时间"},
	{DomainName: "tags", DisplayName: "个人标签", Kind: KindText, Description: "用户标签"},
	{DomainName: "comment", DisplayName: "短评", Kind: KindText, Description: "用户短评"},
	{DomainName: "url", DisplayName: "条目链接", Kind: KindURL, Description: "豆瓣条目链接"},
}

var documentaryCatalog = []Field{
	{DomainName: SubjectIDDomainName, DisplayName: "Subject ID", Kind: KindText, Required: true, Description: "豆瓣条目 ID，同步的连接键"},
	{DomainName: "title", DisplayName: "片名", Kind: KindText, Required: true, Description: "纪录片标题"},
	{DomainName: "director", DisplayName: "导演", Kind: KindText, Description: "导演"},
	{DomainName: "year", DisplayName: "年份", Kind: KindNumber, Description: "上映年份"},
	{DomainName: "doubanRating", DisplayName: "豆瓣评分", Kind: KindNumber, NestedPath: "rating.average", Description: "豆瓣均分"},
	{DomainName: "myRating", DisplayName: "我的评分", Kind: KindRating, Description: "用户打分 1-5"},
	{DomainName: "status", DisplayName: "状态", Kind: KindSingleSelect, Description: "想看 / 在看 / 看过"},
	{DomainName: "markDate", DisplayName: "标记日期", Kind: KindDate, Description: "用户标记时间"},
	{DomainName: "tags", DisplayName: "个人标签", Kind: KindText, Description: "用户标签"},
	{DomainName: "comment", DisplayName: "短评", Kind: KindText, Description: "用户短评"},
	{DomainName: "url", DisplayName: "条目链接", Kind: KindURL, Description: "豆瓣条目链接"},
}
