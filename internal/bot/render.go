package bot

import (
	"fmt"
	"strconv"

	"github.com/spec-kit/helpdesk-bot/internal/domain"
	"github.com/spec-kit/helpdesk-bot/internal/service"
)

// Screen texts and keyboards. Pure presentation: every function maps engine
// outputs to an HTML text plus a (label, token) grid.

func renderWelcome() (string, service.Keyboard) {
	text := "Добро пожаловать в HelpDesk компании <b>ЭниКей</b>! Для работы в сервисе необходимо заполнить данные."
	keyboard := service.Keyboard{
		{{Label: "🏢 Моя компания", Token: service.TokenMyCompany}},
	}
	return text, keyboard
}

func renderMainMenu(user *domain.User, openCount, closedCount int, isAdmin bool) (string, service.Keyboard) {
	text := fmt.Sprintf(
		"<b>🧑‍💻 Главное меню</b>\n\n"+
			"<b>📋 Компания:</b> %s\n"+
			"<b>☎️ Контактный номер:</b> %s\n\n"+
			"<b>📬 Открытых заявок:</b> %d\n"+
			"<b>📭 Закрытых заявок:</b> %d\n"+
			"\nВыберите интересующее действие ⬇️",
		user.Organization, user.Phone, openCount, closedCount,
	)

	keyboard := service.Keyboard{
		{
			{Label: "🏢 Моя компания", Token: service.TokenMyCompany},
			{Label: "📥 Мои заявки", Token: service.TokenMyTickets},
		},
		{{Label: "📤 Новая заявка", Token: service.TokenNewTicket}},
	}
	if isAdmin {
		keyboard = append(keyboard, []service.Button{{Label: "🤘 Тикет меню", Token: service.TokenAdminPanel}})
	}
	return text, keyboard
}

func renderNewTicketPrompt() (string, service.Keyboard) {
	text := "<b>📤 Создание новой заявки</b>\n\n" +
		" - 📝 Опишите вашу проблему.\n" +
		" - 🧩 Пожалуйста, опишите вашу проблему и укажите как можно больше деталей.\n\n" +
		"<b>Пример оформления заявки:</b>\n<i>Не работает принтер на 4 ПК, необходимо проверить подключение.</i>"
	keyboard := service.Keyboard{
		{{Label: "⬅️ Назад", Token: service.TokenMainMenu}},
	}
	return text, keyboard
}

func renderMyTickets(user *domain.User, open []domain.Ticket) (string, service.Keyboard) {
	var text string
	if len(open) > 0 {
		text = fmt.Sprintf(
			"<b>📥 Мои заявки в работе</b>\n\n"+
				"<b>Компания:</b> %s\n"+
				"<b>Адрес заявки:</b> %s\n"+
				"<b>Заявок в работе:</b> %d\n\n",
			user.Organization, user.Address, len(open),
		)
		for _, ticket := range open {
			text += fmt.Sprintf(
				"<b>Номер заявки:</b> <code>#%d</code>\n"+
					"<b>Описание:</b> %s\n"+
					"<b>Дата:</b> %s\n"+
					"<b>Статус:</b> %s\n",
				ticket.ID, ticket.Message, ticket.CreatedAt, ticket.Status,
			)
		}
	} else {
		text = "<b>📥 Мои заявки</b>\n\n" +
			"У вас пока нет заявок в работе.. 🤷‍♂️\n" +
			"- <i>Чтобы оставить заявку, воспользуйтесь меню </i><b>\"📤 Новая заявка\"</b>"
	}

	keyboard := service.Keyboard{
		{{Label: "☑️ История заявок", Token: service.TokenMyTicketHistory}},
		{{Label: "⬅️ Назад", Token: service.TokenMainMenu}},
	}
	return text, keyboard
}

func renderHistory(page service.Page) (string, service.Keyboard) {
	var text string
	switch {
	case len(page.Items) == 0:
		text = "🤷‍♂️ Упс.. У вас нет истории заявок."
	case page.Paged:
		text = fmt.Sprintf("<b>📨 История ваших завершенных заявок (страница %d):</b>\n\n", page.Number)
	default:
		text = "<b>📨 История ваших завершенных заявок:</b>\n\n"
	}

	for _, ticket := range page.Items {
		text += fmt.Sprintf(
			"✅\n"+
				"<b>├ Номер заявки:</b> <code>#%d</code>\n"+
				"<b>├ Время создания:</b> %s\n"+
				"<b>├ Сообщение:</b> - <em>%s</em>\n"+
				"<b>└ Комментарий исполнителя:</b> - <em>%s</em>\n\n",
			ticket.ID, ticket.CreatedAt, ticket.Message, ticket.Comment,
		)
	}

	var keyboard service.Keyboard
	var nav []service.Button
	if page.HasPrev {
		nav = append(nav, service.Button{
			Label: "🔙 Предыдущая",
			Token: service.TokenHistoryPagePrefix + strconv.Itoa(page.Number-1),
		})
	}
	if page.HasNext {
		nav = append(nav, service.Button{
			Label: "🔜 Следующая",
			Token: service.TokenHistoryPagePrefix + strconv.Itoa(page.Number+1),
		})
	}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}
	keyboard = append(keyboard, []service.Button{{Label: "⬅️ Назад", Token: service.TokenMyTickets}})
	return text, keyboard
}

func filledMark(filled bool) string {
	if filled {
		return "✅"
	}
	return "❌"
}

func renderMyCompany(user *domain.User) (string, service.Keyboard) {
	text := fmt.Sprintf(
		"<b>🏢 Информация о компании</b>\n\n"+
			"<b>📋 Компания:</b> %s\n"+
			"<b>📍 Адрес:</b> %s\n"+
			"<b>📑 ИНН:</b> %s\n"+
			"<b>☎️ Контактный номер:</b> <i>%s</i>\n\n"+
			"<b>ЗАПОЛНИТЬ ДАННЫЕ О КОМПАНИИ ⬇️</b>",
		user.Organization, user.Address, user.TaxID, user.Phone,
	)

	keyboard := service.Keyboard{
		{{Label: filledMark(user.FieldFilled(domain.FieldOrganization)) + " Наименование компании", Token: service.TokenEditCompanyName}},
		{{Label: filledMark(user.FieldFilled(domain.FieldAddress)) + " Фактический адрес", Token: service.TokenEditCompanyAddress}},
		{{Label: filledMark(user.FieldFilled(domain.FieldTaxID)) + " ИНН", Token: service.TokenEditCompanyTaxID}},
		{{Label: filledMark(user.FieldFilled(domain.FieldPhone)) + " Контактный номер", Token: service.TokenEditCompanyPhone}},
		{{Label: "⬅️ В меню", Token: service.TokenMainMenu}},
	}
	return text, keyboard
}

func renderEditPrompt(field domain.ProfileField) (string, service.Keyboard) {
	var text string
	switch field {
	case domain.FieldOrganization:
		text = "📋 Введите наименование организации.\nПример: <code>ООО РОГА И КОПЫТА</code>"
	case domain.FieldAddress:
		text = "📍 Введите фактический адрес организации.\nПример: <code>г. Иваново, ул. Варенцовой, д. 33 оф. 1</code>"
	case domain.FieldTaxID:
		text = "📑 Введите ИНН организации.\nПример: <code>3700010101</code>"
	case domain.FieldPhone:
		text = "☎️ Введите контактный номер телефона.\nПример: <code>+79109998188</code>"
	}
	keyboard := service.Keyboard{
		{{Label: "⬅️ Назад", Token: service.TokenMyCompany}},
	}
	return text, keyboard
}

func renderTicketDone(ticketID int64) (string, service.Keyboard) {
	text := fmt.Sprintf(
		"🎉🥳 Успех, ваша заявка зарегистрирована!\n\n"+
			"<b>Номер заявки:</b> <code>#%d</code>.\n\n"+
			"<i>PS: Отслеживайте статус поставленных задач в разделе</i> <b>\"📥 Мои заявки\"</b>",
		ticketID,
	)
	keyboard := service.Keyboard{
		{{Label: "🧑‍💻 Главное меню", Token: service.TokenMainMenu}},
	}
	return text, keyboard
}

func renderAdminPanel(openCount, closedCount int, open []domain.Ticket) (string, service.Keyboard) {
	text := fmt.Sprintf(
		"<b>🤘 Тикет меню 💲</b>\n\n"+
			"<b>🔥 Заявок в работе:</b> %d\n"+
			"<b>👍 Завершенных заявок:</b> %d\n\n"+
			"<b>⚠️ Внимание!</b> <i>Закрытые задачи не могут быть возвращены в работу. Пожалуйста, будьте внимательны при их закрытии!</i>",
		openCount, closedCount,
	)

	var keyboard service.Keyboard
	for _, ticket := range open {
		keyboard = append(keyboard, []service.Button{{
			Label: fmt.Sprintf("Заявка #%d - %s", ticket.ID, ticket.CreatedAt),
			Token: service.TokenTicketPrefix + strconv.FormatInt(ticket.ID, 10),
		}})
	}
	keyboard = append(keyboard, []service.Button{{Label: "⬅️ Назад", Token: service.TokenMainMenu}})
	return text, keyboard
}

func renderTicketDetails(ticket *domain.Ticket) (string, service.Keyboard) {
	text := fmt.Sprintf(
		"<b>Детали заявки:</b> <code>#%d</code>\n\n"+
			"<b>Пользователь ID:</b> <a href='tg://user?id=%d'>%d</a>\n"+
			"<b>Организация:</b> %s\n"+
			"<b>Адрес:</b> %s\n\n"+
			"<b>Сообщение от пользователя:</b> - <em>%s</em>\n\n"+
			"<b>Время создания:</b> %s\n"+
			"<b>Статус:</b> %s\n\n"+
			"<em>⚠️ Для завершения задачи введите комментарий. В ответ вам придет сообщение с подтвержением!</em>",
		ticket.ID, ticket.SubmitterID, ticket.SubmitterID,
		ticket.Organization, ticket.Address, ticket.Message,
		ticket.CreatedAt, ticket.Status,
	)
	keyboard := service.Keyboard{
		{{Label: "⬅️ Назад", Token: service.TokenAdminPanel}},
	}
	return text, keyboard
}

func renderCommentSaved(ticketID int64, comment string) (string, service.Keyboard) {
	text := fmt.Sprintf(
		"<b>Комментарий к тикету <code>#%d</code> успешно записан!</b>\n\n"+
			"<b>Ответ исполнителя:</b> - <em>%s</em>\n\n"+
			"<em>⚠️ Если вы допустили ошибку, просто отправьте исправленное сообщение еще раз.</em>",
		ticketID, comment,
	)
	keyboard := service.Keyboard{
		{{Label: "✅ Завершить задачу", Token: service.TokenCompletePrefix + strconv.FormatInt(ticketID, 10)}},
	}
	return text, keyboard
}

func renderUseMenuHint() (string, service.Keyboard) {
	text := "⚠️ Пожалуйста, воспользуйтесь меню. Отправьте /start, чтобы открыть его."
	keyboard := service.Keyboard{
		{{Label: "🧑‍💻 Главное меню", Token: service.TokenMainMenu}},
	}
	return text, keyboard
}
