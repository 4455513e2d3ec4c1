package commands

const (
	startText = "Команда: /balance — показать ваш баланс по Telegram username.\n" +
		"Все команды: /help"

	helpText = "Команды:\n" +
		"/balance — показать ваш баланс по Telegram username\n" +
		"/balance <имя> — показать баланс по имени из таблицы\n" +
		"/price <предмет> — узнать цену предмета\n" +
		"/pay <получатель> <сумма> — перевести средства\n" +
		"/ops [n] — последние операции (по умолчанию 5, не больше 20)"

	noUsernameText = "У вас не задан Telegram username (@...). Задайте его в настройках Telegram " +
		"и обратитесь к администратору, чтобы он добавил вас в таблицу."

	accessErrorFmt     = "Ошибка доступа к таблице: %v"
	userNotFoundFmt    = "Пользователь @%s не найден в таблице. Обратитесь к администратору."
	nameNotFoundFmt    = "Пользователь «%s» не найден в таблице."
	balanceFmt         = "Баланс %s: %s"
	priceUsageText     = "Использование: /price <название предмета>"
	priceNotFoundFmt   = "Предмет «%s» не найден в прайсе."
	priceLineFmt       = "%s: %s"
	priceListHeader    = "Найдено несколько предметов:"
	priceFuzzyFmt      = "Точного совпадения нет, ближайший предмет:\n%s: %s"
	pricesOffText      = "Прайс не подключен. Обратитесь к администратору."
	payUsageText       = "Использование: /pay <получатель> <сумма>"
	invalidAmountFmt   = "Некорректная сумма «%s». Укажите положительное число, например 12,50."
	recipientMissFmt   = "Получатель @%s не найден в таблице."
	selfTransferText   = "Нельзя перевести средства самому себе."
	insufficientFmt    = "Недостаточно средств: на балансе %s, требуется %s."
	submitFailedText   = "Не удалось отправить перевод. Попробуйте позже."
	payConfirmedFmt    = "Перевод %s → @%s выполнен. Ваш баланс: %s"
	paySubmittedFmt    = "Перевод %s → @%s отправлен. Баланс обновится в ближайшее время."
	opsUsageText       = "Использование: /ops [количество от 1 до 20]"
	opsOffText         = "Журнал операций не подключен. Обратитесь к администратору."
	opsEmptyText       = "Операций не найдено."
	opsHeader          = "Последние операции:"
	unknownCommandText = "Неизвестная команда.\n\n" + helpText
	internalErrorText  = "Внутренняя ошибка. Попробуйте позже."
)
