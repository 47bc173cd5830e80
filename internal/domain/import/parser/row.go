package parser

import (
	"strings"
)

// RawRow maps normalized header names to the trimmed cell values of one data line.
type RawRow struct {
	headers []string
	values  map[string]string
}

// NewRawRow pairs normalized headers with fields. Missing trailing fields read as empty.
func NewRawRow(headers, fields []string) RawRow {
	values := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(fields) {
			values[h] = strings.TrimSpace(fields[i])
		} else {
			values[h] = ""
		}
	}
	return RawRow{headers: headers, values: values}
}

// Get returns the first non-empty value among the given header names.
func (r RawRow) Get(names ...string) string {
	for _, n := range names {
		if v := r.values[n]; v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether any of the given header names is a column of the row.
func (r RawRow) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := r.values[n]; ok {
			return true
		}
	}
	return false
}

// Headers returns the column names in file order.
func (r RawRow) Headers() []string { return r.headers }

// Values returns the cell values in header order.
func (r RawRow) Values() []string {
	out := make([]string, len(r.headers))
	for i, h := range r.headers {
		out[i] = r.values[h]
	}
	return out
}

// Header synonyms, already in normalized form (lowercase, single spaces).
// Lookup order matters: the first non-empty match wins.
var (
	DateColumns = []string{
		"date", "transaction date", "trans date", "trans. date", "txn date", "tran date",
		"posting date", "posted date", "post date", "posted", "booking date", "book date",
		"value date", "effective date", "settlement date", "process date", "processed date",
		"activity date", "purchase date", "statement date", "entry date", "date posted",
		"date of transaction", "transaction posted date", "run date", "trade date",
		"data", "data mov", "data mov.", "data movim.", "data movimento", "data lançamento",
		"data lancamento", "data valor", "fecha", "fecha operación", "fecha operacion",
		"fecha valor", "fecha de operación", "datum", "buchungstag", "buchungsdatum",
		"valutadatum", "wertstellung", "transactiedatum", "boekdatum", "date opération",
		"date operation", "date de valeur", "date comptable", "data operazione", "data contabile",
		"日期", "交易日期", "记账日期", "入账日期", "交易时间", "取引日", "利用日", "ご利用日",
		"日付", "거래일", "거래일자", "이용일",
	}

	AmountColumns = []string{
		"amount", "transaction amount", "amt", "amount (usd)", "amount usd", "amount ($)",
		"net amount", "value", "total", "sum", "billing amount", "charge amount",
		"payment amount", "original amount", "local amount", "amount in usd",
		"valor", "valor (r$)", "montante", "importe", "importe (eur)", "cantidad", "monto",
		"betrag", "betrag (eur)", "umsatz", "bedrag", "montant", "montant (eur)", "importo",
		"金额", "交易金额", "金額", "ご利用金額", "利用金額", "금액", "거래금액",
	}

	DescriptionColumns = []string{
		"description", "transaction description", "desc", "details", "transaction details",
		"memo", "narrative", "narration", "particulars", "remarks", "reference text",
		"original description", "extended description", "statement description", "name",
		"descrição", "descricao", "histórico", "historico", "descripción", "descripcion",
		"concepto", "verwendungszweck", "buchungstext", "omschrijving", "libellé", "libelle",
		"libellé opération", "descrizione", "causale", "交易描述", "摘要", "交易摘要", "备注",
		"ご利用店名", "利用店名", "내용", "적요",
	}

	MerchantColumns = []string{
		"merchant", "merchant name", "payee", "payee name", "vendor", "store", "counterparty",
		"beneficiary", "recipient", "paid to", "empfänger", "auftraggeber/empfänger",
		"beguenstigter/zahlungspflichtiger", "naam / omschrijving", "comercio",
		"estabelecimento", "bénéficiaire", "商户名称", "对方户名", "交易对方", "加盟店名", "가맹점명",
	}

	CategoryColumns = []string{
		"category", "categories", "primary category", "category primary", "transaction category",
		"spending category", "merchant category", "categoria", "categoría", "kategorie",
		"catégorie", "categorie", "交易类型", "分类", "カテゴリ", "분류",
	}

	DetailedCategoryColumns = []string{
		"subcategory", "sub category", "category detailed", "detailed category",
		"category detail", "subcategoria", "unterkategorie",
	}

	DebitColumns = []string{
		"debit", "debits", "debit amount", "withdrawal", "withdrawals", "withdrawal amount",
		"money out", "paid out", "outflow", "charge", "charges", "spent",
		"débito", "debito", "cargo", "cargos", "soll", "af", "débit", "debit (eur)", "支出", "出金",
	}

	CreditColumns = []string{
		"credit", "credits", "credit amount", "deposit", "deposits", "deposit amount",
		"money in", "paid in", "inflow", "received", "payment",
		"crédito", "credito", "abono", "abonos", "haben", "bij", "crédit", "credit (eur)", "收入", "入金",
	}

	BalanceColumns = []string{
		"balance", "running balance", "running bal.", "running bal", "available balance",
		"ledger balance", "closing balance", "account balance", "current balance", "new balance",
		"saldo", "solde", "kontostand", "余额", "残高", "잔액",
	}

	IndicatorColumns = []string{
		"credit debit indicator", "debit credit indicator", "credit/debit", "debit/credit",
		"dr/cr", "cr/dr", "d/c", "c/d", "transaction type", "type", "trans type", "tran type",
		"details", "soll/haben", "af bij", "tipo", "借贷", "收支",
	}

	ChannelColumns = []string{
		"payment channel", "channel", "payment method", "method", "transaction method",
	}

	CurrencyColumns = []string{
		"currency", "currency code", "ccy", "curr", "moeda", "moneda", "währung", "devise", "币种", "通貨",
	}

	CheckNumberColumns = []string{
		"check number", "check #", "check no", "check no.", "check or slip #", "cheque number", "cheque no", "check",
	}
)
